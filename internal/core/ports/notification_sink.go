package ports

import (
	"context"
)

// NotificationSink delivers recipient-facing notifications. Dispatch is
// fire-and-forget from the core's point of view: failures are logged by the
// caller and never retried synchronously, and they never roll back the state
// transition that triggered them.
type NotificationSink interface {
	Dispatch(ctx context.Context, channel string, recipient string, payload map[string]any) error
}
