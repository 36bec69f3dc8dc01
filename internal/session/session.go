// Package session defines the opaque handle a connected client is known by
// to the rest of the core, and the Sink interface the core delivers events
// through. It deliberately carries none of the resume/replay machinery a
// transport layer would need — that is connection-level state, not part of
// this server's domain.
package session

import "github.com/google/uuid"

// ID identifies one connected session. It is distinct from uuid.UUID so a
// session handle can never be passed where a user or hub id is expected.
type ID uuid.UUID

// New returns a fresh, random session id.
func New() ID {
	return ID(uuid.New())
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// Sink is the delivery endpoint a session is reachable through. Send must
// never block: if the underlying transport is full or closed, it returns
// false and the event is dropped for that session only.
type Sink interface {
	Send(event any) bool
}
