package ai

import "context"

// Message is a single turn sent to a generation provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the text-completion boundary. Implementations wrap one
// upstream generation service; failures (timeout, quota, network) come
// back as plain errors for the caller to classify.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
