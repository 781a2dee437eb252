package events

import (
	"context"
	"time"
)

// Level tells subscribers how a notification should be surfaced to the
// person watching a board.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Envelope is the shared event shape used in Fidbaq.
// Topic routing uses EventType; board-scoped fan-out uses BoardID.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAtUTC time.Time `json:"occurred_at_utc"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	BoardID       string    `json:"board_id,omitempty"`
	Level         Level     `json:"level"`
	Message       string    `json:"message"`
	Payload       any       `json:"payload,omitempty"`
}

const (
	TopicBoardCreated      = "board.created"
	TopicBoardUpdated      = "board.updated"
	TopicBoardDeleted      = "board.deleted"
	TopicPostCreated       = "post.created"
	TopicPostStatusChanged = "post.status_changed"
	TopicPostDeleted       = "post.deleted"
	TopicVoteCast          = "vote.cast"
	TopicCommentCreated    = "comment.created"
	TopicCommentUpdated    = "comment.updated"
	TopicCommentDeleted    = "comment.deleted"
	TopicPlanUpgraded      = "plan.upgraded"
)

// BoardTopics lists every topic whose envelopes carry a BoardID.
var BoardTopics = []string{
	TopicBoardUpdated,
	TopicBoardDeleted,
	TopicPostCreated,
	TopicPostStatusChanged,
	TopicPostDeleted,
	TopicVoteCast,
	TopicCommentCreated,
	TopicCommentUpdated,
	TopicCommentDeleted,
}

// Publisher is implemented by the platform bus. Services depend on this
// through their own ports.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Envelope) error
}
