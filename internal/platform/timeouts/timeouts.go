// Package timeouts defines shared timeout constants used by the HTTP surface.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Write caps how long a handler may take to write a response.
const Write = 10 * time.Second

// Idle bounds keep-alive connections between requests.
const Idle = 60 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
