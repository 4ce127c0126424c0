package ai

import "context"

// Responder is the language-generation capability used when a message carries no
// booking or availability intent.
type Responder interface {
	Generate(ctx context.Context, systemContext, utterance string) (string, error)
}
