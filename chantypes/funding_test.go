package chantypes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

func TestFundingMemoDeterministic(t *testing.T) {
	params, _ := testParams(t, 2)
	ch := params.ID()

	f := chantypes.Funding{Channel: ch, Participant: params.Participants[0]}
	require.Equal(t, f.Memo(), f.Memo())
}

func TestFundingMemoDiffersByParticipant(t *testing.T) {
	params, _ := testParams(t, 2)
	ch := params.ID()

	f0 := chantypes.Funding{Channel: ch, Participant: params.Participants[0]}
	f1 := chantypes.Funding{Channel: ch, Participant: params.Participants[1]}
	require.NotEqual(t, f0.Memo(), f1.Memo())
}
