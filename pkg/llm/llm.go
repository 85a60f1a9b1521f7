// Package llm wraps the chat-completion backend used by the curation
// agents. The backend speaks the OpenAI API; a configurable base URL
// covers compatible gateways.
package llm

import "context"

// Chatter issues a single system+user chat completion and returns the
// raw assistant text. Implementations must request JSON-formatted output
// when jsonMode is set.
type Chatter interface {
	Chat(ctx context.Context, system, user string, jsonMode bool) (string, error)
}
