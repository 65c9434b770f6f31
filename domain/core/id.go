package core

import (
	"github.com/google/uuid"
)

// RunID identifies a single pipeline invocation
type RunID string

// NewRunID creates a time-ordered run identifier (UUID v7, v4 fallback)
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

func (id RunID) String() string {
	return string(id)
}

func (id RunID) IsEmpty() bool {
	return id == ""
}
