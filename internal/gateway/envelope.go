package gateway

import "time"

// Envelope is the uniform response wrapper: data is present exactly
// when success is true, and every response carries a fresh timestamp.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Timestamp string `json:"timestamp"`
}

func OK(message string, data any) Envelope {
	return Envelope{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func Fail(message string) Envelope {
	return Envelope{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
