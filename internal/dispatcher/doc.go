// Package dispatcher implements the gateway's per-connection session state
// machine: completing the X3DH handshake as the responder, decoding and
// routing ActionEnvelopes to the right provider operation, and persisting
// ratchet state before any reply reaches the wire. It is the server-side
// analogue of internal/client.
package dispatcher
