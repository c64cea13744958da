package guard_test

import (
	"errors"
	"testing"

	"settlement/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotConstructed = errors.New("escrow must be created via NewEscrow")

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("should pass for a constructed guard", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("should return the supplied error for the zero value", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errNotConstructed)

		require.Error(t, err)
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("should fall back to the default error when none is supplied", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(nil)

		require.Error(t, err)
		assert.Equal(t, guard.ErrDefaultConstructorGuard, err)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type hold struct {
		amount int64
		guard  guard.ConstructorGuard
	}

	newHold := func(amount int64) (hold, error) {
		if amount <= 0 {
			return hold{}, errors.New("amount must be positive")
		}
		return hold{amount: amount, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("should validate an instance built by the constructor", func(t *testing.T) {
		h, err := newHold(1360)

		require.NoError(t, err)
		require.NoError(t, h.guard.Validate(errNotConstructed))
		assert.Equal(t, int64(1360), h.amount)
	})

	t.Run("should flag a zero value that skipped the constructor", func(t *testing.T) {
		var h hold

		err := h.guard.Validate(errNotConstructed)

		require.Error(t, err)
		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("should survive copying by value", func(t *testing.T) {
		h, err := newHold(100)
		require.NoError(t, err)

		clone := h

		require.NoError(t, clone.guard.Validate(errNotConstructed))
	})
}

func TestConstructorGuard_ConcurrentValidate(t *testing.T) {
	g := guard.NewConstructorGuard()

	done := make(chan struct{})
	for range 50 {
		go func() {
			defer func() { done <- struct{}{} }()
			for range 1000 {
				assert.NoError(t, g.Validate(errNotConstructed))
			}
		}()
	}

	for range 50 {
		<-done
	}
}
