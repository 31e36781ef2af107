// Package noop provides an authenticator that admits every request as the
// anonymous identity. It is used when auth.type is "none".
package noop

import (
	"context"
	"net/http"

	"github.com/trademate/supportdesk/pkg/auth"
)

// Authenticator always votes Yes.
type Authenticator struct{}

func (a *Authenticator) Authenticate(_ context.Context, _ *http.Request) auth.AuthResult {
	return auth.AuthResult{Decision: auth.Yes, Identity: auth.Anonymous()}
}
