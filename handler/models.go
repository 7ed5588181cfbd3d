package handler

const (
	StatusSuccess   = "success"
	MessageReceived = "Data received"
)

// Acknowledgement is the fixed reply to every accepted payload.
type Acknowledgement struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
