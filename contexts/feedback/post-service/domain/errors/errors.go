package errors

import "errors"

var (
	ErrInvalidPostInput = errors.New("invalid post input")
	ErrUnauthenticated  = errors.New("authentication is required")
	ErrBoardNotFound    = errors.New("board not found")
	ErrPostNotFound     = errors.New("post not found")
	ErrForbidden        = errors.New("only the board owner can do this")
)
