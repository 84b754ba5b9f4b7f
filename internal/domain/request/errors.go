package request

import "errors"

var (
	ErrRequestNotFound = errors.New("request not found")
	ErrAlreadyDecided  = errors.New("request has already been decided")
	ErrNotRequester    = errors.New("only the requester can cancel this request")
	ErrNotAuthorized   = errors.New("not authorized to decide this request")
	ErrUnknownKind     = errors.New("unknown request kind")
	ErrUnknownAction   = errors.New("unknown request action")
	ErrFutureDate      = errors.New("date must not be in the future")
)
