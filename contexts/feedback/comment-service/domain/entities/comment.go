package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxContentLength    = 500
	MaxAuthorNameLength = 100
)

// Author of a comment. Signed-in authors carry their id plus the email and
// name cached from their session; anonymous ones only a name.
type Author struct {
	UserID string
	Email  string
	Name   string
}

func (a Author) Anonymous() bool {
	return strings.TrimSpace(a.UserID) == ""
}

type Comment struct {
	CommentID string
	PostID    string
	Content   string
	Author    Author
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Comment) WrittenBy(userID string) bool {
	userID = strings.TrimSpace(userID)
	return userID != "" && c.Author.UserID == userID
}

// PostRef is a post plus the visibility of the board it lives on.
type PostRef struct {
	PostID       string
	BoardID      string
	BoardOwnerID string
	BoardPublic  bool
}

// VisibleTo reports whether viewerID may read or comment on the post.
func (p PostRef) VisibleTo(viewerID string) bool {
	viewerID = strings.TrimSpace(viewerID)
	return p.BoardPublic || (viewerID != "" && viewerID == p.BoardOwnerID)
}

// NormalizeContent trims content and reports whether it is 1..500 characters.
func NormalizeContent(raw string) (string, bool) {
	content := strings.TrimSpace(raw)
	length := utf8.RuneCountInString(content)
	return content, length >= 1 && length <= MaxContentLength
}
