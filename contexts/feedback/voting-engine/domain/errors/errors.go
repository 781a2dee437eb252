package errors

import "errors"

var (
	ErrInvalidVoteInput              = errors.New("invalid vote input")
	ErrAnonymousVotingNotImplemented = errors.New("anonymous voting is not implemented")
	ErrPostNotFound                  = errors.New("post not found")
	ErrVoteConflict                  = errors.New("vote conflict")
)
