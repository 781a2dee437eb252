package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrCheckoutFailed     = errors.New("checkout session creation failed")
	ErrPlanUpdateFailed   = errors.New("plan update failed")
	ErrPlanLookupFailed   = errors.New("plan lookup failed")
	ErrBillingUnavailable = errors.New("billing is not configured")
)
