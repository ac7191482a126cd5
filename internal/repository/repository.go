package repository

import (
	"fmt"
)

// Repositories holds all repository implementations
type Repositories struct {
	Games     GameRepository
	Snapshots SnapshotRepository
}

// NewRepositories wires every repository to one corpus store
func NewRepositories(store *Store) (*Repositories, error) {
	if store == nil {
		return nil, fmt.Errorf("corpus store is required")
	}

	return &Repositories{
		Games:     store,
		Snapshots: store,
	}, nil
}
