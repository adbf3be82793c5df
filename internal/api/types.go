package api

// MessageResponse is the body of the root status endpoint
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is the body of the health endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ErrorResponse is the body of every error reply. Detail carries the
// human-readable message under the field name existing clients read.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Error  string `json:"error"`
	Code   int    `json:"code"`
}
