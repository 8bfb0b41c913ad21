// Package queue defines message payloads exchanged over the message broker.
package queue

// ActionEvent is published whenever an actor mutates state. It carries
// enough for downstream consumers to build an append-only audit trail
// without querying the primary database. ActorID is zero for anonymous
// operations (public registration, author submissions).
type ActionEvent struct {
	ActorID   uint64                 `json:"actor_id"`
	Action    string                 `json:"action"`
	Model     string                 `json:"model"`
	Details   map[string]interface{} `json:"details,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	UserAgent string                 `json:"user_agent,omitempty"`
	At        string                 `json:"at"`
}
