// Package ports defines the interfaces that connect the application layer
// to infrastructure adapters.
//
// # Port Interfaces
//
//   - [DuplexConn]: One full-duplex text connection (server or client side)
//   - [SessionDialer]: Opens a DuplexConn to a streaming endpoint
//   - [UploadStore]: Persists uploaded content under a file name
//   - [TransferClient]: Submits one file to a transfer endpoint
//   - [Logger]: Structured logging abstraction
//   - [HTTPClient]: HTTP request abstraction for dependency injection
//
// The application layer (internal/app) depends only on these interfaces.
// Adapters (internal/adapters) implement them with gorilla/websocket, the
// file system, net/http and zerolog.
package ports
