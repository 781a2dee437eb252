package errors

import "errors"

var (
	ErrInvalidCommentInput = errors.New("invalid comment input")
	ErrUnauthenticated     = errors.New("authentication is required")
	ErrPostNotFound        = errors.New("post not found")
	ErrCommentNotFound     = errors.New("comment not found")
	ErrForbidden           = errors.New("only the author can change this comment")
)
