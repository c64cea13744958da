package order_test

import (
	"testing"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLine(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("should derive the line commission from the captured prices", func(t *testing.T) {
		line, err := order.NewLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			2,
			testMoney(t, 500),
			testMoney(t, 605),
			decimal.NewFromFloat(0.21),
		)

		require.NoError(t, err)
		require.NoError(t, line.Validate())
		assert.Equal(t, 2, line.Quantity())
		assert.Equal(t, int64(210), line.Commission().Amount())
		assert.False(t, line.Flagged())

		baseSubtotal, err := line.BaseSubtotal()
		require.NoError(t, err)
		assert.Equal(t, int64(1000), baseSubtotal.Amount())

		displaySubtotal, err := line.DisplaySubtotal()
		require.NoError(t, err)
		assert.Equal(t, int64(1210), displaySubtotal.Amount())
	})

	t.Run("should flag corrupt pricing instead of going negative", func(t *testing.T) {
		line, err := order.NewLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			3,
			testMoney(t, 500),
			testMoney(t, 450),
			decimal.NewFromFloat(0.21),
		)

		require.NoError(t, err)
		assert.True(t, line.Flagged())
		assert.Equal(t, int64(0), line.Commission().Amount())
	})

	t.Run("should fail with zero quantity", func(t *testing.T) {
		line, err := order.NewLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			0,
			testMoney(t, 500),
			testMoney(t, 605),
			decimal.NewFromFloat(0.21),
		)

		require.Error(t, err)
		assert.Nil(t, line)
		assert.Contains(t, err.Error(), "quantity is invalid")
	})

	t.Run("should fail when prices mix currencies", func(t *testing.T) {
		eur, err := kernel.NewCurrency("EUR")
		require.NoError(t, err)
		display, err := kernel.NewMoney(605, eur)
		require.NoError(t, err)

		line, lineErr := order.NewLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			1,
			testMoney(t, 500),
			display,
			decimal.NewFromFloat(0.21),
		)

		require.Error(t, lineErr)
		assert.Nil(t, line)
		assert.Contains(t, lineErr.Error(), "differs from display currency")
	})

	t.Run("should fail when the rate leaves the unit interval", func(t *testing.T) {
		for _, rate := range []decimal.Decimal{decimal.NewFromFloat(-0.1), decimal.NewFromFloat(1.5)} {
			line, err := order.NewLine(
				kernel.NewUUID(),
				orderID,
				kernel.NewUUID(),
				1,
				testMoney(t, 500),
				testMoney(t, 605),
				rate,
			)

			require.Error(t, err)
			assert.Nil(t, line)
			assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		}
	})
}

func TestRestoreLine(t *testing.T) {
	orderID := kernel.NewUUID()

	t.Run("should preserve the stored commission and flag", func(t *testing.T) {
		line, err := order.RestoreLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			2,
			testMoney(t, 500),
			testMoney(t, 450),
			decimal.NewFromFloat(0.21),
			testMoney(t, 0),
			true,
		)

		require.NoError(t, err)
		assert.True(t, line.Flagged())
		assert.Equal(t, int64(0), line.Commission().Amount())
		assert.Equal(t, int64(450), line.UnitDisplayPrice().Amount())
	})

	t.Run("should fail with invalid stored commission", func(t *testing.T) {
		var invalid kernel.Money

		line, err := order.RestoreLine(
			kernel.NewUUID(),
			orderID,
			kernel.NewUUID(),
			2,
			testMoney(t, 500),
			testMoney(t, 605),
			decimal.NewFromFloat(0.21),
			invalid,
			false,
		)

		require.Error(t, err)
		assert.Nil(t, line)
	})
}

func TestLineValidate(t *testing.T) {
	t.Run("should fail for zero value line", func(t *testing.T) {
		var line order.Line

		assert.ErrorIs(t, line.Validate(), order.ErrLineIsNotConstructed)
	})

	t.Run("should fail for nil line", func(t *testing.T) {
		var line *order.Line

		assert.ErrorIs(t, line.Validate(), order.ErrLineIsNotConstructed)
	})
}
