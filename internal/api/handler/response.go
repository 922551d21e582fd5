package handler

// Envelope is the canonical tri-state response body: success with content,
// or failure with a message and a stable error code. Exactly one of Content
// and ErrorType is meaningful depending on IsSuccess.
type Envelope struct {
	IsSuccess bool   `json:"isSuccess"`
	Message   string `json:"message,omitempty"`
	ErrorType int    `json:"errorType,omitempty"`
	Content   any    `json:"content,omitempty"`
}

// Success wraps a payload in a successful envelope.
func Success(content any) Envelope {
	return Envelope{IsSuccess: true, Content: content}
}

// Failure builds a failed envelope from a message and taxonomy code.
func Failure(message string, errorType int) Envelope {
	return Envelope{IsSuccess: false, Message: message, ErrorType: errorType}
}
