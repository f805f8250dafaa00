package chantypes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

func TestAmountAddSub(t *testing.T) {
	a := chantypes.NewAmount(7)
	b := chantypes.NewAmount(3)

	require.Equal(t, "10", a.Add(b).String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, "4", diff.String())
}

func TestAmountSubUnderflow(t *testing.T) {
	a := chantypes.NewAmount(3)
	b := chantypes.NewAmount(7)

	_, err := a.Sub(b)
	require.Error(t, err)
}

func TestAmountCmpAndLessThan(t *testing.T) {
	a := chantypes.NewAmount(3)
	b := chantypes.NewAmount(7)

	require.True(t, a.LessThan(b))
	require.False(t, b.LessThan(a))
	require.Equal(t, 0, a.Cmp(a))
}

func TestAmountIsZero(t *testing.T) {
	require.True(t, chantypes.ZeroAmount.IsZero())
	require.False(t, chantypes.NewAmount(1).IsZero())
}

func TestSumAmounts(t *testing.T) {
	total := chantypes.SumAmounts([]chantypes.Amount{
		chantypes.NewAmount(7), chantypes.NewAmount(3), chantypes.NewAmount(0),
	})
	require.Equal(t, "10", total.String())
}

func TestAmountEncodeForSigningDistinguishesGrouping(t *testing.T) {
	// Without the length prefix, [257] and [1, 1] would both serialize
	// to the same two little-endian bytes (0x01 0x01); the length
	// prefix makes them unambiguous even when concatenated.
	a := chantypes.NewAmount(257)
	b := chantypes.NewAmount(1)

	encA := a.EncodeForSigning()
	encB := b.EncodeForSigning()
	require.NotEqual(t, encA, append(append([]byte{}, encB...), encB...))
}

func TestAmountTextRoundtrip(t *testing.T) {
	a := chantypes.NewAmount(12345)
	text, err := a.MarshalText()
	require.NoError(t, err)

	var b chantypes.Amount
	require.NoError(t, b.UnmarshalText(text))
	require.Equal(t, 0, a.Cmp(b))
}

func TestAmountUnmarshalTextRejectsNegative(t *testing.T) {
	var a chantypes.Amount
	require.Error(t, a.UnmarshalText([]byte("-1")))
}
