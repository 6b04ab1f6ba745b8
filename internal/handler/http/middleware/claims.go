package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

// Claims is the caller identity carried by a verified access token.
type Claims struct {
	UserID     string
	Email      string
	EmployeeID string
	Role       user.Role
}

// ClaimsFromRequest reads the access token claims placed by jwtauth.Verifier.
func ClaimsFromRequest(r *http.Request) (Claims, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil || claims == nil {
		return Claims{}, false
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return Claims{}, false
	}
	email, _ := claims["email"].(string)
	employeeID, _ := claims["employee_id"].(string)
	role, _ := claims["role"].(string)

	return Claims{
		UserID:     userID,
		Email:      email,
		EmployeeID: employeeID,
		Role:       user.Role(role),
	}, true
}

// Actor converts the claims into the identity the timesheet service expects.
func (c Claims) Actor() timesheet.Actor {
	return timesheet.Actor{
		UserID:     c.UserID,
		EmployeeID: c.EmployeeID,
		CanApprove: user.CanApprove(c.Role),
	}
}
