// Package delivery holds the entry points that serve the application: the HTTP API
// and the background workers.
package delivery

import "context"

// Delivery is a long-running server started by the application after dependency injection.
// Serve blocks until the delivery is shut down through its lifecycle hook.
type Delivery interface {
	Serve(ctx context.Context) error
}
