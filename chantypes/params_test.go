package chantypes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

func TestParamsValidateRequiresParticipant(t *testing.T) {
	p := chantypes.Params{ChallengeDuration: time.Second}
	require.ErrorIs(t, p.Validate(), chantypes.ErrInvalidInput)
}

func TestParamsIDDeterministic(t *testing.T) {
	params, _ := testParams(t, 2)
	id1 := params.ID()
	id2 := params.ID()
	require.Equal(t, id1, id2)
}

func TestParamsIDChangesWithNonce(t *testing.T) {
	params, _ := testParams(t, 2)
	other := params
	other.Nonce = chantypes.Nonce{9, 9, 9}
	require.NotEqual(t, params.ID(), other.ID())
}

func TestParamsIndexOf(t *testing.T) {
	params, _ := testParams(t, 3)
	require.Equal(t, 0, params.IndexOf(params.Participants[0]))
	require.Equal(t, 2, params.IndexOf(params.Participants[2]))

	stranger, kps := testParams(t, 1)
	_ = stranger
	require.Equal(t, -1, params.IndexOf(kps[0].Account))
}
