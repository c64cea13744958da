package commands_test

import (
	"testing"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequestReleaseCommand_ValidInput(t *testing.T) {
	orderID := kernel.NewUUID()
	sellerID := kernel.NewUUID()

	cmd, err := commands.NewRequestReleaseCommand(orderID, sellerID, kernel.RoleSeller, "goods delivered, awaiting payout")

	require.NoError(t, err)
	assert.Equal(t, orderID, cmd.OrderID())
	assert.Equal(t, sellerID, cmd.Actor().ID())
	assert.True(t, cmd.Actor().Is(kernel.RoleSeller))
	assert.Equal(t, "goods delivered, awaiting payout", cmd.Reason())
	assert.NoError(t, cmd.Validate())
}

func TestNewRequestReleaseCommand_EmptyReason(t *testing.T) {
	_, err := commands.NewRequestReleaseCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.RoleSeller, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrReasonIsRequired)
}

func TestNewRequestReleaseCommand_InvalidOrderID(t *testing.T) {
	var orderID kernel.UUID

	_, err := commands.NewRequestReleaseCommand(orderID, kernel.NewUUID(), kernel.RoleSeller, "payout")

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestNewRequestReleaseCommand_InvalidActor(t *testing.T) {
	var actorID kernel.UUID

	_, err := commands.NewRequestReleaseCommand(kernel.NewUUID(), actorID, kernel.RoleSeller, "payout")

	require.Error(t, err)
	assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
}

func TestRequestReleaseCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.RequestReleaseCommand

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrRequestReleaseCommandIsNotConstructed)
}
