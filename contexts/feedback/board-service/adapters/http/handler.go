package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"fidbaq/contexts/feedback/board-service/application"
	"fidbaq/contexts/feedback/board-service/domain/entities"
	"fidbaq/contexts/feedback/board-service/ports"
	httptransport "fidbaq/contexts/feedback/board-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) ListBoardsHandler(ctx context.Context, ownerID string) (httptransport.ListBoardsResponse, error) {
	boards, err := h.Service.ListBoards(ctx, ownerID)
	if err != nil {
		return httptransport.ListBoardsResponse{}, err
	}
	items := make([]httptransport.BoardDTO, 0, len(boards))
	for _, board := range boards {
		items = append(items, toBoardDTO(board))
	}
	return httptransport.ListBoardsResponse{Items: items}, nil
}

func (h Handler) GetBoardHandler(ctx context.Context, viewerID string, boardID string) (httptransport.BoardResponse, error) {
	board, err := h.Service.GetBoard(ctx, boardID, viewerID)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return httptransport.BoardResponse{Data: toBoardDTO(board)}, nil
}

func (h Handler) GetPublicBoardHandler(ctx context.Context, publicLink string) (httptransport.BoardResponse, error) {
	board, err := h.Service.GetBoardByPublicLink(ctx, publicLink)
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return httptransport.BoardResponse{Data: toBoardDTO(board)}, nil
}

func (h Handler) CreateBoardHandler(
	ctx context.Context,
	ownerID string,
	req httptransport.CreateBoardRequest,
) (httptransport.BoardResponse, error) {
	board, err := h.Service.CreateBoard(ctx, ownerID, ports.CreateBoardInput{
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return httptransport.BoardResponse{Data: toBoardDTO(board)}, nil
}

func (h Handler) UpdateBoardHandler(
	ctx context.Context,
	ownerID string,
	boardID string,
	req httptransport.UpdateBoardRequest,
) (httptransport.BoardResponse, error) {
	board, err := h.Service.UpdateBoard(ctx, boardID, ownerID, ports.UpdateBoardInput{
		Name:        req.Name,
		Description: req.Description,
		Theme:       req.Theme,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		return httptransport.BoardResponse{}, err
	}
	return httptransport.BoardResponse{Data: toBoardDTO(board)}, nil
}

func (h Handler) DeleteBoardHandler(ctx context.Context, ownerID string, boardID string) error {
	return h.Service.DeleteBoard(ctx, boardID, ownerID)
}

func toBoardDTO(board entities.Board) httptransport.BoardDTO {
	return httptransport.BoardDTO{
		BoardID:     board.BoardID,
		OwnerID:     board.OwnerID,
		Name:        board.Name,
		Description: board.Description,
		PublicLink:  board.PublicLink,
		IsPublic:    board.IsPublic,
		Theme:       string(board.Theme),
		CreatedAt:   board.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   board.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
