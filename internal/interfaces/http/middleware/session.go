package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storedesk/storedesk/internal/domain/employee"
	"github.com/storedesk/storedesk/internal/shared/logger"
	"github.com/storedesk/storedesk/internal/shared/utils"
)

const (
	ContextKeyEmployeeID = "employee_id"
	ContextKeySessionID  = "session_id"
)

// principalSource is the part of the auth service the middleware reads.
type principalSource interface {
	CurrentPrincipal() *employee.Employee
	CurrentSessionID() string
	HasPermission(required []string) bool
}

type SessionMiddleware struct {
	auth   principalSource
	logger logger.Interface
}

func NewSessionMiddleware(auth principalSource, log logger.Interface) *SessionMiddleware {
	return &SessionMiddleware{auth: auth, logger: log}
}

// RequireLogin rejects requests while nobody is logged in at the station.
func (m *SessionMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := m.auth.CurrentPrincipal()
		if principal == nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "no employee is logged in")
			c.Abort()
			return
		}
		c.Set(ContextKeyEmployeeID, principal.ID)
		c.Set(ContextKeySessionID, m.auth.CurrentSessionID())
		c.Next()
	}
}

// RequirePermission rejects requests unless the logged in employee holds
// any one of the listed capabilities, is an admin, or holds "all".
func (m *SessionMiddleware) RequirePermission(required ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := m.auth.CurrentPrincipal()
		if principal == nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "no employee is logged in")
			c.Abort()
			return
		}
		if !m.auth.HasPermission(required) {
			m.logger.Warnw("permission denied", "employee_id", principal.ID, "required", required)
			utils.ErrorResponse(c, http.StatusForbidden, "insufficient permissions")
			c.Abort()
			return
		}
		c.Set(ContextKeyEmployeeID, principal.ID)
		c.Next()
	}
}
