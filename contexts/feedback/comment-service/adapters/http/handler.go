package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fidbaq/contexts/feedback/comment-service/application"
	"fidbaq/contexts/feedback/comment-service/domain/entities"
	"fidbaq/contexts/feedback/comment-service/ports"
	httptransport "fidbaq/contexts/feedback/comment-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListCommentsHandler(ctx context.Context, viewerID string, postID string) (httptransport.ListCommentsResponse, error) {
	comments, err := h.Service.ListComments(ctx, postID, viewerID)
	if err != nil {
		return httptransport.ListCommentsResponse{}, err
	}
	items := make([]httptransport.CommentDTO, 0, len(comments))
	for _, comment := range comments {
		items = append(items, toCommentDTO(comment))
	}
	return httptransport.ListCommentsResponse{Items: items}, nil
}

func (h Handler) CreateCommentHandler(
	ctx context.Context,
	author entities.Author,
	postID string,
	req httptransport.CreateCommentRequest,
) (httptransport.CommentResponse, error) {
	comment, err := h.Service.CreateComment(ctx, postID, author, ports.CreateCommentInput{
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
	})
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return httptransport.CommentResponse{Data: toCommentDTO(comment)}, nil
}

func (h Handler) UpdateCommentHandler(
	ctx context.Context,
	actorID string,
	commentID string,
	req httptransport.UpdateCommentRequest,
) (httptransport.CommentResponse, error) {
	comment, err := h.Service.UpdateComment(ctx, commentID, actorID, req.Content)
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return httptransport.CommentResponse{Data: toCommentDTO(comment)}, nil
}

func (h Handler) DeleteCommentHandler(ctx context.Context, actorID string, commentID string) error {
	return h.Service.DeleteComment(ctx, commentID, actorID)
}

// toCommentDTO never exposes a signed-in author's cached email.
func toCommentDTO(comment entities.Comment) httptransport.CommentDTO {
	dto := httptransport.CommentDTO{
		CommentID:  comment.CommentID,
		PostID:     comment.PostID,
		Content:    comment.Content,
		AuthorName: comment.Author.Name,
		CreatedAt:  comment.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  comment.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if comment.Author.Anonymous() {
		dto.AuthorEmail = comment.Author.Email
	} else {
		dto.AuthorID = comment.Author.UserID
	}
	return dto
}
