package entities

import (
	"strings"
	"time"
)

type VoteType string

const (
	VoteTypeUpvote   VoteType = "upvote"
	VoteTypeDownvote VoteType = "downvote"
)

// ParseVoteType defaults an empty value to upvote.
func ParseVoteType(raw string) (VoteType, bool) {
	switch VoteType(strings.ToLower(strings.TrimSpace(raw))) {
	case "", VoteTypeUpvote:
		return VoteTypeUpvote, true
	case VoteTypeDownvote:
		return VoteTypeDownvote, true
	default:
		return "", false
	}
}

type Vote struct {
	VoteID    string
	PostID    string
	UserID    string
	VoteType  VoteType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Action is the storage effect of a vote request.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionRemoved Action = "removed"
)

// VoteState is the vote a single user holds on a single post.
type VoteState struct {
	Voted bool
	Type  VoteType
}

func NoVote() VoteState { return VoteState{} }

func Voted(voteType VoteType) VoteState { return VoteState{Voted: true, Type: voteType} }

// ApplyVote is the toggle transition. Requesting the type already held
// removes the vote; requesting another type switches it.
func ApplyVote(current VoteState, requested VoteType) (VoteState, Action) {
	switch {
	case !current.Voted:
		return Voted(requested), ActionCreated
	case current.Type == requested:
		return NoVote(), ActionRemoved
	default:
		return Voted(requested), ActionUpdated
	}
}

// PostRef is the slice of a post the engine reads and writes.
type PostRef struct {
	PostID    string
	BoardID   string
	VoteCount int
}

// CountUpvotes returns the number of upvote rows in votes.
func CountUpvotes(votes []Vote) int {
	count := 0
	for _, vote := range votes {
		if vote.VoteType == VoteTypeUpvote {
			count++
		}
	}
	return count
}
