package appointment

import "github.com/google/uuid"

// IDAllocator hands out identifiers for new patients and appointments.
type IDAllocator interface {
	NextID() uuid.UUID
}

// UUIDAllocator allocates random version 4 UUIDs.
type UUIDAllocator struct{}

func (UUIDAllocator) NextID() uuid.UUID { return uuid.New() }
