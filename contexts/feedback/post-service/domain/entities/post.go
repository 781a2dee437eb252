package entities

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusRejected   Status = "rejected"
)

func ParseStatus(raw string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return status, true
	default:
		return "", false
	}
}

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxAuthorNameLength  = 100
)

// Author is either a signed-in user (UserID set) or an anonymous visitor
// identified only by the name and optional email they typed.
type Author struct {
	UserID string
	Name   string
	Email  string
}

func (a Author) Anonymous() bool {
	return strings.TrimSpace(a.UserID) == ""
}

type Post struct {
	PostID      string
	BoardID     string
	Title       string
	Description string
	Status      Status
	Author      Author
	VoteCount   int
	CreatedAt   time.Time
}

// BoardRef is the part of a board the post service checks access against.
type BoardRef struct {
	BoardID  string
	OwnerID  string
	IsPublic bool
}

func (b BoardRef) VisibleTo(viewerID string) bool {
	return b.IsPublic || (strings.TrimSpace(viewerID) != "" && strings.TrimSpace(viewerID) == b.OwnerID)
}
