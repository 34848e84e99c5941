package partner

import (
	"errors"
	"testing"

	"github.com/royale/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDebtor(t *testing.T) {
	d, err := NewDebtor(" Nakato ", "0772 000000", decimal.NewFromInt(5000))
	require.NoError(t, err)
	assert.Equal(t, "Nakato", d.Name)
	assert.False(t, d.IsSettled())

	_, err = NewDebtor("", "", decimal.Zero)
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))

	_, err = NewDebtor("Okello", "", decimal.NewFromInt(-1))
	assert.True(t, errors.Is(err, shared.ErrInvalidInput))
}

func TestDebtor_Balance(t *testing.T) {
	d, err := NewDebtor("Okello", "", decimal.NewFromInt(2000))
	require.NoError(t, err)

	require.NoError(t, d.AddCharge(decimal.NewFromInt(3000)))
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(5000)))

	err = d.RecordPayment(decimal.NewFromInt(6000))
	assert.True(t, errors.Is(err, shared.ErrInsufficientBalance))
	assert.True(t, d.Amount.Equal(decimal.NewFromInt(5000)))

	require.NoError(t, d.RecordPayment(decimal.NewFromInt(5000)))
	assert.True(t, d.IsSettled())

	assert.Error(t, d.AddCharge(decimal.Zero))
	assert.Error(t, d.RecordPayment(decimal.NewFromInt(-1)))
}
