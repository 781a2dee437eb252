package commands

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"fidbaq/contexts/feedback/voting-engine/adapters/memory"
	"fidbaq/contexts/feedback/voting-engine/domain/entities"
	domainerrors "fidbaq/contexts/feedback/voting-engine/domain/errors"
	"fidbaq/internal/shared/events"
)

type fixedClock struct {
	now time.Time
}

func (f fixedClock) Now() time.Time { return f.now }

type recordingPublisher struct {
	events []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event events.Envelope) error {
	p.events = append(p.events, event)
	return nil
}

func newUseCase(store *memory.Store, publisher *recordingPublisher) VoteUseCase {
	uc := VoteUseCase{
		Votes: store,
		Clock: fixedClock{now: time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)},
		IDGen: store,
	}
	if publisher != nil {
		uc.Publisher = publisher
	}
	return uc
}

func TestCastVoteTogglesAndRecounts(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1"})
	publisher := &recordingPublisher{}
	uc := newUseCase(store, publisher)

	first, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1"})
	if err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if first.Action != entities.ActionCreated || first.VoteCount != 1 || first.Vote == nil {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1", VoteType: "upvote"})
	if err != nil {
		t.Fatalf("second vote failed: %v", err)
	}
	if second.Action != entities.ActionRemoved || second.VoteCount != 0 || second.Vote != nil {
		t.Fatalf("unexpected second result %+v", second)
	}
	if rows := store.VoteRows("post-1"); len(rows) != 0 {
		t.Fatalf("expected no vote rows, got %d", len(rows))
	}
	if len(publisher.events) != 2 || publisher.events[0].BoardID != "board-1" {
		t.Fatalf("expected two board notifications, got %+v", publisher.events)
	}
}

func TestCastVoteSwitchingTypeDropsUpvote(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1"})
	uc := newUseCase(store, &recordingPublisher{})

	if _, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1"}); err != nil {
		t.Fatalf("upvote failed: %v", err)
	}
	result, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1", VoteType: "downvote"})
	if err != nil {
		t.Fatalf("downvote failed: %v", err)
	}
	if result.Action != entities.ActionUpdated || result.VoteCount != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if rows := store.VoteRows("post-1"); len(rows) != 1 || rows[0].VoteType != entities.VoteTypeDownvote {
		t.Fatalf("expected a single downvote row, got %+v", rows)
	}
}

func TestCastVoteCounterMatchesRowsAfterAnySequence(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1"})
	uc := newUseCase(store, nil)
	users := []string{"u1", "u2", "u3", "u4", "u5"}
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		cmd := CastVoteCommand{PostID: "post-1", UserID: users[rng.Intn(len(users))]}
		if rng.Intn(4) == 0 {
			cmd.VoteType = "downvote"
		}
		result, err := uc.CastVote(context.Background(), cmd)
		if err != nil {
			t.Fatalf("vote %d failed: %v", i, err)
		}
		rows := entities.CountUpvotes(store.VoteRows("post-1"))
		post, _ := store.Post("post-1")
		if result.VoteCount != rows || post.VoteCount != rows {
			t.Fatalf("vote %d: counter drifted result=%d stored=%d rows=%d", i, result.VoteCount, post.VoteCount, rows)
		}
	}
}

func TestCastVoteAnonymousPerformsNoWrites(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1", VoteCount: 4})
	publisher := &recordingPublisher{}
	uc := newUseCase(store, publisher)

	_, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "  "})
	if !errors.Is(err, domainerrors.ErrAnonymousVotingNotImplemented) {
		t.Fatalf("expected not implemented error, got %v", err)
	}
	post, _ := store.Post("post-1")
	if post.VoteCount != 4 || len(store.VoteRows("post-1")) != 0 || len(publisher.events) != 0 {
		t.Fatalf("anonymous vote must not write, post=%+v events=%d", post, len(publisher.events))
	}
}

func TestCastVoteMissingPost(t *testing.T) {
	uc := newUseCase(memory.NewStore(nil), nil)
	_, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "missing", UserID: "user-1"})
	if !errors.Is(err, domainerrors.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestCastVoteRejectsUnknownType(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1"})
	_, err := newUseCase(store, nil).CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1", VoteType: "meh"})
	if !errors.Is(err, domainerrors.ErrInvalidVoteInput) {
		t.Fatalf("expected ErrInvalidVoteInput, got %v", err)
	}
}

func TestCastVoteRecountFailureDiscardsWrite(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetPost(entities.PostRef{PostID: "post-1", BoardID: "board-1"})
	store.FailCount = errors.New("count unavailable")
	uc := newUseCase(store, &recordingPublisher{})

	if _, err := uc.CastVote(context.Background(), CastVoteCommand{PostID: "post-1", UserID: "user-1"}); err == nil {
		t.Fatal("expected recount failure to surface")
	}
	if rows := store.VoteRows("post-1"); len(rows) != 0 {
		t.Fatalf("vote write must be discarded with the failed recount, got %d rows", len(rows))
	}
}
