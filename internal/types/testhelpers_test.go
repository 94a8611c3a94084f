package types

import (
	"time"

	"github.com/google/uuid"
)

func nowPtr() *time.Time {
	t := time.Now().UTC()
	return &t
}

func newUUID() uuid.UUID {
	return uuid.New()
}
