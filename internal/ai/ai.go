package ai

import "context"

// Adapter is the narrow seam to the external language model: one opaque
// prompt in, one opaque reply out. Nothing else is assumed about the
// model's behavior; callers must treat the reply as untrusted text.
type Adapter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
