package llm

import "context"

// Client is the interface the orchestrator uses to talk to the
// reasoning service. Tools use the OpenAI function-calling shape:
// {"type":"function","function":{"name","description","parameters"}}.
// A nil or empty tools slice means the model may only answer in text.
type Client interface {
	// Chat sends a chat completion request and returns the response.
	Chat(ctx context.Context, model string, messages []Message, tools []map[string]any) (*ChatResponse, error)

	// Ping checks if the provider is reachable and the credential works.
	Ping(ctx context.Context) error
}
