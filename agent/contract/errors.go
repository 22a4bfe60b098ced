package contract

import "errors"

var (
	ErrModelInvoke       = errors.New("model invoke failed")
	ErrValidation        = errors.New("validation failed")
	ErrNoRouteFound      = errors.New("no route assigned")
	ErrRetailerNotFound  = errors.New("retailer not found")
	ErrRetailerUnmatched = errors.New("retailer unmatched")
	ErrMalformedRoute    = errors.New("malformed route payload")
	ErrCollaborator      = errors.New("collaborator call failed")
)
