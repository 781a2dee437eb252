package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateCommentRequest struct {
	Content     string `json:"content"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

type CommentDTO struct {
	CommentID   string `json:"comment_id"`
	PostID      string `json:"post_id"`
	Content     string `json:"content"`
	AuthorID    string `json:"author_id,omitempty"`
	AuthorName  string `json:"author_name,omitempty"`
	AuthorEmail string `json:"author_email,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type CommentResponse struct {
	Data CommentDTO `json:"data"`
}

type ListCommentsResponse struct {
	Items []CommentDTO `json:"items"`
}
