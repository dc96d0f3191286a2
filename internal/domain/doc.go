// Package domain contains the core entities and value objects for lockstep.
//
// This package has no dependencies on infrastructure concerns (WebSocket,
// HTTP, file system, logging) and contains only protocol rules.
//
// # Entities
//
//   - [Message]: A tagged update message exchanged on a streaming session
//   - [SessionState]: Lifecycle of one streaming session
//   - [TransferRequest] / [TransferResult]: Input and output of a file transfer
//
// The string forms "Start", "Update {i}" and "Processed: {text}" are only
// known to [FormatMessage], [ParseClientMessage] and [ParseServerMessage].
package domain
