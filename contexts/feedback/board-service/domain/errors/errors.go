package errors

import "errors"

var (
	ErrInvalidBoardInput  = errors.New("invalid board input")
	ErrUnauthenticated    = errors.New("authentication is required")
	ErrBoardNotFound      = errors.New("board not found")
	ErrForbidden          = errors.New("only the board owner can do this")
	ErrPlanLimitReached   = errors.New("free plan board limit reached")
	ErrPublicLinkConflict = errors.New("public link already taken")
)
