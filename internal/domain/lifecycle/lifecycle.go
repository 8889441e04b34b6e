// Package lifecycle holds shared start/stop constants for fx-managed
// components.
package lifecycle

import "time"

// DefaultTimeout bounds startup and graceful-shutdown work such as DB pings
// and HTTP server drains.
const DefaultTimeout = 10 * time.Second
