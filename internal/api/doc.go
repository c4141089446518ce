// Package api implements the local HTTP REST API and WebSocket server for
// the Inception bridge.
//
// This package provides:
//   - REST endpoints to read the entity mirror and send control actions
//   - REST endpoints to read and update the review-event feature flags
//   - WebSocket hub streaming entity state changes and review events
//   - JWT bearer authentication with ticket-based WebSocket auth
//   - Middleware stack (request ID, logging, recovery, body limit)
//   - TLS support for deployments outside a trusted network
//
// # Architecture
//
// The server reads the client's in-memory mirror directly; it never calls
// the panel for reads. Control requests are forwarded to the panel through
// the client. The hub registers on the client's data and review callback
// streams and fans out changes to subscribed WebSocket clients on the
// "entity.state" and "review.event" channels.
//
// # Security
//
// Every route except the health check requires a Bearer JWT signed with
// HS256 and the configured secret. Tokens are minted offline with
// "inceptionbridge -issue-token <subject>". WebSocket connections use
// single-use tickets so the JWT never appears in a URL.
package api
