package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateBoardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Theme       string `json:"theme,omitempty"`
	IsPublic    *bool  `json:"is_public,omitempty"`
}

type UpdateBoardRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Theme       *string `json:"theme,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

type BoardDTO struct {
	BoardID     string `json:"board_id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PublicLink  string `json:"public_link"`
	IsPublic    bool   `json:"is_public"`
	Theme       string `json:"theme"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type BoardResponse struct {
	Data BoardDTO `json:"data"`
}

type ListBoardsResponse struct {
	Items []BoardDTO `json:"items"`
}
