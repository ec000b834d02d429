package accountdelivery

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/corebank/ledger/internal/domain"
	"github.com/corebank/ledger/internal/middleware"
	"github.com/corebank/ledger/pkg/errorspkg"
	"github.com/corebank/ledger/pkg/randompkg"
)

func randomAccount() domain.Account {
	return domain.Account{
		AccountNumber: randompkg.AccountNumber(),
		Balance:       randompkg.MoneyAmountBetween(100, 10_000),
		Type:          domain.TypeSaving,
		Status:        domain.StatusActive,
		HolderName:    randompkg.HolderName(),
		RoutingCode:   randompkg.IFSC(),
		CreatedAt:     time.Now().Truncate(time.Second).UTC(),
	}
}

func addIdentity(req *http.Request, username, role string) {
	req.Header.Set(middleware.UserHeaderKey, username)
	req.Header.Set(middleware.RoleHeaderKey, role)
	req.Header.Set(middleware.EmailHeaderKey, username+"@email.com")
}

func TestGetAccountAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	staffUsername := randompkg.Username()
	account := randomAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountService := NewMockService(ctrl)
	accountHandler := NewHandler(accountService)

	server := gin.Default()
	server.Use(middleware.IdentityMiddleware(),
		middleware.RequireRoles(middleware.RoleEmployee, middleware.RoleBankManager))
	server.GET("/accounts/:account_number", accountHandler.Get)

	testCases := []struct {
		name          string
		url           string
		setupIdentity func(req *http.Request)
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name:          "NoIdentity",
			url:           "/accounts/" + account.AccountNumber,
			setupIdentity: func(req *http.Request) {},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "CustomerForbidden",
			url:  "/accounts/" + account.AccountNumber,
			setupIdentity: func(req *http.Request) {
				addIdentity(req, staffUsername, middleware.RoleCustomer)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusForbidden, recorder.Code)
			},
		},
		{
			name: "InvalidAccountNumber",
			url:  "/accounts/123",
			setupIdentity: func(req *http.Request) {
				addIdentity(req, staffUsername, middleware.RoleEmployee)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().GetByNumber(gomock.Any(), gomock.Any()).Times(0)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusBadRequest, recorder.Code)
			},
		},
		{
			name: "NotFound",
			url:  "/accounts/" + account.AccountNumber,
			setupIdentity: func(req *http.Request) {
				addIdentity(req, staffUsername, middleware.RoleEmployee)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "InternalError",
			url:  "/accounts/" + account.AccountNumber,
			setupIdentity: func(req *http.Request) {
				addIdentity(req, staffUsername, middleware.RoleEmployee)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(domain.Account{}, errorspkg.ErrInternal)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusInternalServerError, recorder.Code)
			},
		},
		{
			name: "OK",
			url:  "/accounts/" + account.AccountNumber,
			setupIdentity: func(req *http.Request) {
				addIdentity(req, staffUsername, middleware.RoleBankManager)
			},
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetByNumber(gomock.Any(), gomock.Eq(account.AccountNumber)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got response
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
				require.Equal(t, account.AccountNumber, got.Data.Account.AccountNumber)
				require.Equal(t, account.Balance, got.Data.Account.Balance)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodGet, tc.url, nil)
			require.NoError(t, err)

			tc.setupIdentity(req)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}

func TestEnquiryAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)

	customerUsername := randompkg.Username()
	account := randomAccount()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountService := NewMockService(ctrl)
	accountHandler := NewHandler(accountService)

	server := gin.Default()
	server.Use(middleware.IdentityMiddleware(), middleware.RequireRoles(middleware.RoleCustomer))
	server.GET("/accounts/enquiry", accountHandler.Enquiry)

	testCases := []struct {
		name          string
		buildStubs    func(accountService *MockService)
		checkResponse func(recorder *httptest.ResponseRecorder)
	}{
		{
			name: "NotFound",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetByHolder(gomock.Any(), gomock.Eq(customerUsername)).
					Times(1).
					Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusNotFound, recorder.Code)
			},
		},
		{
			name: "OK",
			buildStubs: func(accountService *MockService) {
				accountService.EXPECT().
					GetByHolder(gomock.Any(), gomock.Eq(customerUsername)).
					Times(1).
					Return(account, nil)
			},
			checkResponse: func(recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)

				var got response
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
				require.Equal(t, account.AccountNumber, got.Data.Account.AccountNumber)
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			tc.buildStubs(accountService)

			recorder := httptest.NewRecorder()

			req, err := http.NewRequest(http.MethodGet, "/accounts/enquiry", nil)
			require.NoError(t, err)

			addIdentity(req, customerUsername, middleware.RoleCustomer)
			server.ServeHTTP(recorder, req)
			tc.checkResponse(recorder)
		})
	}
}
