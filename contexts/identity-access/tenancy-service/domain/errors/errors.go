package errors

import "errors"

var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrTenantSuspended    = errors.New("tenant suspended")
	ErrInvalidRoutingKey  = errors.New("invalid routing key")
	ErrInvalidTenantName  = errors.New("invalid tenant name")
	ErrRoutingKeyTaken    = errors.New("routing key already taken")
	ErrCatalogUnavailable = errors.New("tenant catalog unavailable")
)
