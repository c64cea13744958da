package kernel

import (
	"fmt"

	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"
)

// ErrActorIsNotConstructed indicates that an Actor was not created via NewActor.
var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor")

// Role identifies which marketplace party performs an operation. Transition
// rights and workflow decisions are authorized against roles; authentication
// itself happens outside the core.
type Role int

const (
	// RoleUnknown represents an invalid or undefined role.
	RoleUnknown Role = iota

	// RoleBuyer places orders and confirms receipt.
	RoleBuyer

	// RoleSeller fulfills orders and may request fund release.
	RoleSeller

	// RoleAgent delivers orders after claiming them.
	RoleAgent

	// RoleAdmin decides release requests, disputes, and settings.
	RoleAdmin

	// RoleSystem marks scheduler-driven operations.
	RoleSystem
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown: "unknown",
		RoleBuyer:   "buyer",
		RoleSeller:  "seller",
		RoleAgent:   "agent",
		RoleAdmin:   "admin",
		RoleSystem:  "system",
	}
}

func getValidRoleStrings() map[Role]string {
	//nolint:exhaustive // RoleUnknown is intentionally excluded as it's invalid
	return map[Role]string{
		RoleBuyer:  "buyer",
		RoleSeller: "seller",
		RoleAgent:  "agent",
		RoleAdmin:  "admin",
		RoleSystem: "system",
	}
}

// Validate checks the role is one of the defined values.
func (r Role) Validate() error {
	if _, ok := getValidRoleStrings()[r]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("role is invalid", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

// String returns the lowercase role name used on the wire.
func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// RoleFromString parses a lowercase role name.
func RoleFromString(s string) (Role, error) {
	for role, str := range getValidRoleStrings() {
		if str == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role is invalid", fmt.Errorf("%q is not a valid role", s))
}

// Actor is the identity/role pair on whose behalf an operation runs.
type Actor struct {
	id   UUID
	role Role

	guard guard.ConstructorGuard
}

// NewActor creates a validated Actor.
func NewActor(id UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}

	return Actor{
		id:    id,
		role:  role,
		guard: guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the actor was created through NewActor.
func (a Actor) Validate() error {
	return a.guard.Validate(ErrActorIsNotConstructed)
}

// ID returns the actor's identity.
func (a Actor) ID() UUID {
	return a.id
}

// Role returns the actor's role.
func (a Actor) Role() Role {
	return a.role
}

// Is reports whether the actor holds the given role.
func (a Actor) Is(role Role) bool {
	return a.role == role
}
