package core

import (
	"strings"

	"github.com/google/uuid"
)

// IDGenerator hands out fresh identifiers for entities and transactions.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random (v4) UUID strings.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// Entity carries the identity shared by accounts and categories.
type Entity struct {
	id string
}

// NewEntity creates an entity with a freshly generated id.
func NewEntity(gen IDGenerator) (Entity, error) {
	return RehydrateEntity(gen.NewID())
}

// RehydrateEntity reconstructs an entity whose id was assigned earlier.
func RehydrateEntity(id string) (Entity, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entity{}, ErrEmptyID
	}
	return Entity{id: id}, nil
}

func (e Entity) ID() string {
	return e.id
}
