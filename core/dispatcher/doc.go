// Package dispatcher drives one inbound transport connection through the
// bridge protocol: handshake, routing, and the live sub-channel lifecycle.
//
// Each connection is a small state machine: Unidentified until a valid
// set-identity message claims a player session, then Identified (optionally
// LiveBound), and finally Terminated. Messages are UTF-8 JSON records with
// a mandatory action field; payloads beyond the routing fields are opaque.
// Responses carry a status field from a closed enumeration.
//
// The dispatcher knows nothing about the physical transport. Collaborators
// hand it a Transport per connection and call Serve on a worker of their
// choosing; one misbehaving connection stalls only its own worker.
package dispatcher
