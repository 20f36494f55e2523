// Package uuid provides record ID generation.
package uuid

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates random UUID strings for fetch records.
type Generator struct{}

// New creates a new Generator.
func New() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv4 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid4: %w", err)
	}
	return id.String(), nil
}
