package gen

import "github.com/satori/go.uuid"

// NewUUID generates new UUID.
func NewUUID() string {
	return uuid.Must(uuid.NewV4()).String()
}

// IDFunc produces identifiers. Tests replace it with a deterministic one.
type IDFunc func() string
