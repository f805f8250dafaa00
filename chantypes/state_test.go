package chantypes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

func testParams(t *testing.T, n int) (chantypes.Params, []chanenc.L2Keypair) {
	t.Helper()
	kps := make([]chanenc.L2Keypair, n)
	accs := make([]chanenc.L2Account, n)
	for i := range kps {
		kp, err := chanenc.GenerateL2Keypair()
		require.NoError(t, err)
		kps[i] = kp
		accs[i] = kp.Account
	}
	params := chantypes.Params{
		Nonce:             chantypes.Nonce{1, 2, 3},
		Participants:      accs,
		ChallengeDuration: 10 * time.Second,
	}
	return params, kps
}

func signState(kps []chanenc.L2Keypair, state chantypes.State) chantypes.FullySignedState {
	msg := state.EncodeForSigning()
	sigs := make([]chanenc.L2Signature, len(kps))
	for i, kp := range kps {
		sigs[i] = kp.Sign(msg)
	}
	return chantypes.FullySignedState{State: state, Sigs: sigs}
}

func TestStateValidateAgainst(t *testing.T) {
	params, _ := testParams(t, 2)
	state := chantypes.State{
		Channel:    params.ID(),
		Version:    1,
		Allocation: []chantypes.Amount{chantypes.NewAmount(7), chantypes.NewAmount(3)},
	}
	require.NoError(t, state.ValidateAgainst(params))
}

func TestStateValidateAgainstWrongChannel(t *testing.T) {
	params, _ := testParams(t, 2)
	state := chantypes.State{
		Channel:    chantypes.ChannelId{0xff},
		Allocation: []chantypes.Amount{chantypes.NewAmount(7), chantypes.NewAmount(3)},
	}
	require.ErrorIs(t, state.ValidateAgainst(params), chantypes.ErrInvalidInput)
}

func TestStateValidateAgainstWrongAllocationLength(t *testing.T) {
	params, _ := testParams(t, 2)
	state := chantypes.State{
		Channel:    params.ID(),
		Allocation: []chantypes.Amount{chantypes.NewAmount(7)},
	}
	require.ErrorIs(t, state.ValidateAgainst(params), chantypes.ErrInvalidInput)
}

func TestVerifySignaturesHappyPath(t *testing.T) {
	params, kps := testParams(t, 2)
	state := chantypes.State{
		Channel:    params.ID(),
		Version:    5,
		Allocation: []chantypes.Amount{chantypes.NewAmount(7), chantypes.NewAmount(3)},
		Finalized:  true,
	}
	signed := signState(kps, state)
	require.NoError(t, chantypes.VerifySignatures(params.Participants, signed.State, signed.Sigs))
}

func TestVerifySignaturesRejectsWrongSigner(t *testing.T) {
	params, kps := testParams(t, 2)
	state := chantypes.State{
		Channel:    params.ID(),
		Version:    5,
		Allocation: []chantypes.Amount{chantypes.NewAmount(7), chantypes.NewAmount(3)},
		Finalized:  true,
	}
	signed := signState(kps, state)
	// Swap the two signatures so each is checked against the wrong key.
	signed.Sigs[0], signed.Sigs[1] = signed.Sigs[1], signed.Sigs[0]
	require.ErrorIs(t, chantypes.VerifySignatures(params.Participants, signed.State, signed.Sigs), chantypes.ErrAuthentication)
}

func TestVerifySignaturesRejectsLengthMismatch(t *testing.T) {
	params, kps := testParams(t, 2)
	state := chantypes.State{
		Channel:    params.ID(),
		Allocation: []chantypes.Amount{chantypes.NewAmount(7), chantypes.NewAmount(3)},
	}
	signed := signState(kps, state)
	require.ErrorIs(t, chantypes.VerifySignatures(params.Participants, signed.State, signed.Sigs[:1]), chantypes.ErrInvalidInput)
}

func TestMayBeUnderfunded(t *testing.T) {
	require.True(t, chantypes.State{Version: 0, Finalized: false}.MayBeUnderfunded())
	require.False(t, chantypes.State{Version: 1, Finalized: false}.MayBeUnderfunded())
	require.False(t, chantypes.State{Version: 0, Finalized: true}.MayBeUnderfunded())
}

func TestRegisteredStateSettled(t *testing.T) {
	now := time.Unix(1000, 0)

	finalized := chantypes.RegisteredState{State: chantypes.State{Finalized: true}}
	require.True(t, finalized.Settled(now))

	notYet := chantypes.RegisteredState{Timeout: now.Add(time.Second)}
	require.False(t, notYet.Settled(now))

	justNow := chantypes.RegisteredState{Timeout: now}
	require.True(t, justNow.Settled(now))
}
