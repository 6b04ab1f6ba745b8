package middleware

import (
	"fmt"
	"net/http"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/response"
)

// RequirePermission checks if user has specific permission
func RequirePermission(permission user.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := ClaimsFromRequest(r)
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", permission))
				return
			}

			if !user.HasPermission(c.Role, permission) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", permission, c.Role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployee rejects accounts that have no employee profile.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, ok := ClaimsFromRequest(r)
		if !ok || c.EmployeeID == "" {
			response.HandleError(w, user.ErrEmployeeProfileRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}
