// Package delivery defines the contract shared by all transport servers.
package delivery

import "context"

// Delivery is a long-running transport (HTTP today) managed by the app lifecycle.
type Delivery interface {
	Serve(ctx context.Context) error
}
