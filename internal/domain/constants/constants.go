// Package constants defines shared domain-level constant values.
package constants

// Pub/Sub provider types for the notification delivery stream.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)
