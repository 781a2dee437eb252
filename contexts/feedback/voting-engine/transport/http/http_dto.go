package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CastVoteRequest struct {
	VoteType string `json:"vote_type,omitempty"`
}

type VoteDTO struct {
	VoteID    string `json:"vote_id"`
	PostID    string `json:"post_id"`
	UserID    string `json:"user_id"`
	VoteType  string `json:"vote_type"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type CastVoteResponse struct {
	PostID    string   `json:"post_id"`
	Action    string   `json:"action"`
	Vote      *VoteDTO `json:"vote,omitempty"`
	VoteCount int      `json:"vote_count"`
}

type UserVoteResponse struct {
	PostID string   `json:"post_id"`
	Voted  bool     `json:"voted"`
	Vote   *VoteDTO `json:"vote,omitempty"`
}

type PostVotesResponse struct {
	PostID  string `json:"post_id"`
	Upvotes int    `json:"upvotes"`
}
