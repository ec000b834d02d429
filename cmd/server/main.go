package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/corebank/ledger/internal/accountdelivery"
	"github.com/corebank/ledger/internal/accountrepo"
	"github.com/corebank/ledger/internal/accountservice"
	"github.com/corebank/ledger/internal/entrydelivery"
	"github.com/corebank/ledger/internal/entryrepo"
	"github.com/corebank/ledger/internal/entryservice"
	"github.com/corebank/ledger/internal/idgen"
	"github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/internal/notification"
	"github.com/corebank/ledger/internal/transferdelivery"
	"github.com/corebank/ledger/internal/transferrepo"
	"github.com/corebank/ledger/internal/transferservice"
	"github.com/corebank/ledger/pkg/configpkg"
	"github.com/corebank/ledger/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	dispatcher := notification.NewAsyncDispatcher(
		notification.LogSender{Logger: logger}, logger, config.NotificationBuffer)
	defer dispatcher.Close()

	server, err := createServer(conn, dispatcher, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	if err := server.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

// idStore satisfies idgen.Store with the persisted uniqueness checks.
type idStore struct {
	accounts *accountrepo.RepoPGS
	entries  *entryrepo.RepoPGS
}

func (s idStore) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	return s.accounts.AccountNumberExists(ctx, number)
}

func (s idStore) TransactionIDExists(ctx context.Context, id string) (bool, error) {
	return s.entries.TransactionIDExists(ctx, id)
}

func createServer(conn *sql.DB, dispatcher *notification.AsyncDispatcher, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	entryRepo := entryrepo.NewRepoPGS(conn, config.TxLockTimeout)
	transferRepo := transferrepo.NewRepoPGS(conn, config.TxLockTimeout)

	generator := idgen.New(idStore{accountRepo, entryRepo})

	accountService := accountservice.New(accountRepo)
	entryService := entryservice.New(entryRepo, accountService, generator, dispatcher, config.TxMaxAttempts)
	transferService := transferservice.New(transferRepo, accountService, generator, dispatcher, config.TxMaxAttempts)

	accountHandler := accountdelivery.NewHandler(accountService)
	entryHandler := entrydelivery.NewHandler(entryService)
	transferHandler := transferdelivery.NewHandler(transferService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())
	server.Use(middleware.IdentityMiddleware())

	staffRoutes := server.Group("/").
		Use(middleware.RequireRoles(middleware.RoleEmployee, middleware.RoleBankManager))

	staffRoutes.POST("/entries", entryHandler.Create)
	staffRoutes.POST("/entries/statement", entryHandler.ExportCSV)
	staffRoutes.GET("/accounts/:account_number", accountHandler.Get)
	staffRoutes.GET("/accounts/:account_number/entries", entryHandler.List)

	customerRoutes := server.Group("/").
		Use(middleware.RequireRoles(middleware.RoleCustomer))

	customerRoutes.GET("/accounts/enquiry", accountHandler.Enquiry)
	customerRoutes.POST("/transfers", transferHandler.Create)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("method", entrydelivery.ValidMethod); err != nil {
			return nil, errors.New("cannot register method validator")
		}
	}

	return server, nil
}
