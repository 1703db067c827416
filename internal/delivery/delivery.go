// Package delivery defines the contract every transport entrypoint
// (HTTP, workers) implements.
package delivery

import "context"

// Delivery is a serving entrypoint started by the application container.
type Delivery interface {
	Serve(ctx context.Context) error
}
