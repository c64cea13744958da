package kernel

import (
	"fmt"

	"settlement/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed indicates a zero-value UUID that skipped the
// constructor functions.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError("UUID must be created via NewUUID, UUIDFromString, or UUIDFromBytes")

// UUID identifies orders, escrows, release requests, wallet accounts and the
// parties acting on them. It wraps github.com/google/uuid so aggregates never
// depend on the library directly and so a zero value is detectably invalid.
//
// The zero value fails Validate; obtain instances through NewUUID,
// UUIDFromString or UUIDFromBytes. UUID is immutable and safe to copy and
// compare.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random version 4 identifier. Handlers use it to mint
// ids for new aggregates before the first persistence write.
func NewUUID() UUID {
	return UUID{
		id: uuid.New(),
	}
}

// UUIDFromString parses the canonical textual form, typically an id arriving
// from a request path or payload. The accepted formats are those of
// uuid.Parse, including the braced and urn: prefixed variants.
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	return UUID{id: id}, nil
}

// UUIDFromBytes reconstructs an identifier from its 16-byte binary form, the
// shape the storage layer keeps. A nil UUID on disk is rejected the same way
// the zero value is.
func UUIDFromBytes(b []byte) (UUID, error) {
	id, err := uuid.FromBytes(b)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}
	newID := UUID{id: id}
	if err = newID.Validate(); err != nil {
		return UUID{}, err
	}

	return newID, nil
}

// String renders the canonical "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx" form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes exposes the wrapped uuid.UUID for the persistence adapters; slice it
// for a raw byte form.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both values carry the same identifier.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate returns ErrUUIDIsNotConstructed for the zero value. Aggregate
// constructors call it on every id they receive.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
