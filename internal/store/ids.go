package store

import (
	"github.com/google/uuid"
)

// newID returns a random UUID string. Node and note ids share one namespace.
func newID() string {
	return uuid.NewString()
}

// nilID is the all-zero UUID, treated everywhere as "no parent".
var nilID = uuid.Nil.String()
