package request

import "github.com/cmlabs-hris/kintai-backend-go/internal/domain/user"

// Authorizer decides whether actor may approve or reject h.
type Authorizer interface {
	CanApprove(actor user.User, h Header) bool
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(actor user.User, h Header) bool

func (f AuthorizerFunc) CanApprove(actor user.User, h Header) bool {
	return f(actor, h)
}

// AdminAuthorizer lets active administrators decide any request.
type AdminAuthorizer struct{}

func (AdminAuthorizer) CanApprove(actor user.User, _ Header) bool {
	return actor.IsActive && actor.IsAdmin()
}
