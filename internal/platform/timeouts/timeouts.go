// Package timeouts defines shared timeout constants used by the ledger
// command and its storage backends.
package timeouts

import "time"

// StoreConnect caps the wait for a remote store to answer its first ping.
const StoreConnect = 5 * time.Second

// TelemetryShutdown limits how long exporters may flush after a command.
const TelemetryShutdown = 5 * time.Second
