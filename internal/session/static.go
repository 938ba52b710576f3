package session

import (
	"context"
	"fmt"

	"github.com/Veraticus/ponder/internal/common"
	"github.com/Veraticus/ponder/internal/service"
)

// Static always returns the same session.
type Static struct {
	session service.Session
}

// NewStatic returns a provider for a fixed user.
func NewStatic(userID, email string) *Static {
	return &Static{session: service.Session{UserID: userID, Email: email}}
}

// Current implements service.SessionProvider.
func (s *Static) Current(context.Context) (service.Session, error) {
	if !s.session.Authenticated() {
		return service.Session{}, fmt.Errorf("%w: no user configured", common.ErrAuth)
	}
	return s.session, nil
}
