package middleware

import (
	"errors"
	"net/http"
	"net/mail"

	"github.com/gin-gonic/gin"

	"github.com/corebank/ledger/pkg/web"
)

// Identity headers are set by the authenticating gateway in front of
// this service. The core never derives identity itself; it consumes an
// already-authenticated caller and a pre-checked role.
const (
	UserHeaderKey  = "X-Auth-User"
	RoleHeaderKey  = "X-Auth-Role"
	EmailHeaderKey = "X-Auth-Email"

	IdentityKey = "authorization_identity"
)

// Caller roles as assigned by the gateway.
const (
	RoleBankManager = "BM"
	RoleEmployee    = "EM"
	RoleCustomer    = "CU"
)

// Identity is the authenticated caller passed explicitly into the core.
type Identity struct {
	Username string
	Role     string
	Email    string
}

var (
	errIdentityMissing = errors.New("identity headers are not provided")
	errUnknownRole     = errors.New("unknown caller role")
	errForbidden       = errors.New("caller role is not allowed to perform this operation")
)

func validRole(role string) bool {
	switch role {
	case RoleBankManager, RoleEmployee, RoleCustomer:
		return true
	}

	return false
}

// IdentityMiddleware extracts the caller identity from gateway headers
// and stores it in the request context.
func IdentityMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username := ctx.GetHeader(UserHeaderKey)
		role := ctx.GetHeader(RoleHeaderKey)

		if username == "" || role == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(errIdentityMissing))
			return
		}

		if !validRole(role) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(errUnknownRole))
			return
		}

		email := ctx.GetHeader(EmailHeaderKey)
		if email != "" {
			if _, err := mail.ParseAddress(email); err != nil {
				email = ""
			}
		}

		ctx.Set(IdentityKey, Identity{Username: username, Role: role, Email: email})
		ctx.Next()
	}
}

// RequireRoles aborts the request unless the caller holds one of the
// given roles.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity := ctx.MustGet(IdentityKey).(Identity)

		for _, role := range roles {
			if identity.Role == role {
				ctx.Next()
				return
			}
		}

		ctx.AbortWithStatusJSON(http.StatusForbidden, web.Error(errForbidden))
	}
}
