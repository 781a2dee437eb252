package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
}

type UpdatePostStatusRequest struct {
	Status string `json:"status"`
}

type PostDTO struct {
	PostID      string `json:"post_id"`
	BoardID     string `json:"board_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	AuthorID    string `json:"author_id,omitempty"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
	VotesCount  int    `json:"votes_count"`
	CreatedAt   string `json:"created_at"`
}

type PostResponse struct {
	Data PostDTO `json:"data"`
}

type ListPostsResponse struct {
	Items []PostDTO `json:"items"`
}
