package shared

import (
	"errors"
	"net/http"
	"strings"

	"fieldpay/internal/domain/auth"
)

var ErrForeignUser = errors.New("technicians may only act on their own records")

// TargetUserID resolves whose records a request touches. Admins may name
// another user with ?userId=; everyone else is pinned to themselves.
func TargetUserID(r *http.Request, user auth.UserContext) (string, error) {
	requested := strings.TrimSpace(r.URL.Query().Get("userId"))
	if requested == "" || requested == user.UserID {
		return user.UserID, nil
	}
	if !user.IsAdmin() {
		return "", ErrForeignUser
	}
	return requested, nil
}
