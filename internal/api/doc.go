// Package api implements the HTTP status API and live event stream for
// Haunt Logic.
//
// This package provides:
//   - Read-only REST endpoints for prop state, activation history and
//     audio devices
//   - WebSocket hub relaying show events (prop.admitted, prop.dropped,
//     prop.settled, audio.failed) to subscribed clients
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// The API observes the show; it never triggers props. Operators use it
// from a phone or laptop backstage to see which props are cooling down
// and why a scare did not fire.
package api
