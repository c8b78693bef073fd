package application

import "context"

// Worker is a background loop started by the process root.
// Implementations return when the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
