package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fidbaq/contexts/feedback/post-service/application"
	"fidbaq/contexts/feedback/post-service/domain/entities"
	"fidbaq/contexts/feedback/post-service/ports"
	httptransport "fidbaq/contexts/feedback/post-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListPostsHandler(ctx context.Context, viewerID string, boardID string) (httptransport.ListPostsResponse, error) {
	posts, err := h.Service.ListPosts(ctx, boardID, viewerID)
	if err != nil {
		return httptransport.ListPostsResponse{}, err
	}
	items := make([]httptransport.PostDTO, 0, len(posts))
	for _, post := range posts {
		items = append(items, toPostDTO(post))
	}
	return httptransport.ListPostsResponse{Items: items}, nil
}

func (h Handler) CreatePostHandler(
	ctx context.Context,
	author entities.Author,
	boardID string,
	req httptransport.CreatePostRequest,
) (httptransport.PostResponse, error) {
	post, err := h.Service.CreatePost(ctx, boardID, author, ports.CreatePostInput{
		Title:       req.Title,
		Description: req.Description,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
	})
	if err != nil {
		return httptransport.PostResponse{}, err
	}
	return httptransport.PostResponse{Data: toPostDTO(post)}, nil
}

func (h Handler) UpdatePostStatusHandler(
	ctx context.Context,
	actorID string,
	postID string,
	req httptransport.UpdatePostStatusRequest,
) (httptransport.PostResponse, error) {
	post, err := h.Service.UpdatePostStatus(ctx, postID, actorID, req.Status)
	if err != nil {
		return httptransport.PostResponse{}, err
	}
	return httptransport.PostResponse{Data: toPostDTO(post)}, nil
}

func (h Handler) DeletePostHandler(ctx context.Context, actorID string, postID string) error {
	return h.Service.DeletePost(ctx, postID, actorID)
}

func toPostDTO(post entities.Post) httptransport.PostDTO {
	return httptransport.PostDTO{
		PostID:      post.PostID,
		BoardID:     post.BoardID,
		Title:       post.Title,
		Description: post.Description,
		Status:      string(post.Status),
		AuthorID:    post.Author.UserID,
		AuthorName:  post.Author.Name,
		AuthorEmail: post.Author.Email,
		VotesCount:  post.VoteCount,
		CreatedAt:   post.CreatedAt.UTC().Format(time.RFC3339),
	}
}
