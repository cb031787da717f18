package entity

import "github.com/google/uuid"

// Identity is the explicit session context passed to every operation that
// needs to know who is calling. Authenticated callers carry a user id;
// anonymous callers carry only a guest session id used by the usage gate.
type Identity struct {
	UserId  *uuid.UUID
	GuestId string
}

func (i Identity) Authenticated() bool {
	return i.UserId != nil
}
