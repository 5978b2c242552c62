// Package server exposes a discovery session over HTTP.
//
// The API is read-only and JSON by default:
//
//	GET /api/devices          all devices, sorted by identity
//	GET /api/devices/{id}     one device with its TXT metadata interpreted
//	GET /api/categories       service types found by meta-discovery
//	GET /api/status           session ID, browsing flag, active browsers
//	GET /api/snapshot         status and devices, ?format=json|yaml|cbor
//
// # Live Feed
//
// GET /ws upgrades to a websocket (github.com/gorilla/websocket). The server
// first sends a "snapshot" message, then one "change" message per registry
// change. Every message carries the complete snapshot, so a client that
// misses messages only needs the latest one. With ?format=cbor messages are
// sent as CBOR binary frames instead of JSON text frames.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{Listen: ":8080"}, coord, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until ctx is cancelled
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// When the context passed to Start is cancelled the server:
//  1. Stops forwarding changes
//  2. Sends a close frame to every websocket client
//  3. Waits for in-flight requests, up to ShutdownTimeout
package server
