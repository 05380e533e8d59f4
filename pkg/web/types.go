package web

// TestEmailRequest asks the API to verify the configured SMTP transport,
// optionally by sending a probe message.
type TestEmailRequest struct {
	To string `json:"to" validate:"omitempty,email"`
}

// TestEmailResponse reports the outcome of an SMTP probe.
type TestEmailResponse struct {
	Configured bool   `json:"configured"`
	Sent       bool   `json:"sent"`
	Message    string `json:"message"`
}
