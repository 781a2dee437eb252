package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type EntitlementsDTO struct {
	Plan           string `json:"plan"`
	IsPro          bool   `json:"is_pro"`
	BoardCount     int    `json:"board_count"`
	BoardLimit     int    `json:"board_limit"`
	CanCreateBoard bool   `json:"can_create_board"`
}

type EntitlementsResponse struct {
	Data EntitlementsDTO `json:"data"`
}

type CheckoutRequest struct {
	UserEmail string `json:"userEmail"`
	UserID    string `json:"userId"`
}

type CheckoutResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}
