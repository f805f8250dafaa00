package holdings_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/holdings"
	"github.com/perun-network/icp-adjudicator-go/storage"
)

func testFunding(t *testing.T) chantypes.Funding {
	t.Helper()
	kp, err := chanenc.GenerateL2Keypair()
	require.NoError(t, err)
	params := chantypes.Params{
		Nonce:             chantypes.Nonce{1},
		Participants:      []chanenc.L2Account{kp.Account},
		ChallengeDuration: time.Second,
	}
	return chantypes.Funding{Channel: params.ID(), Participant: kp.Account}
}

func TestLedgerGetAbsentIsZero(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)

	amt, err := l.Get(f)
	require.NoError(t, err)
	require.True(t, amt.IsZero())
}

func TestLedgerCreditAccumulates(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)

	require.NoError(t, l.Credit(f, chantypes.NewAmount(5)))
	require.NoError(t, l.Credit(f, chantypes.NewAmount(2)))

	amt, err := l.Get(f)
	require.NoError(t, err)
	require.Equal(t, "7", amt.String())
}

func TestLedgerSetOverwrites(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)

	require.NoError(t, l.Credit(f, chantypes.NewAmount(5)))
	require.NoError(t, l.Set(f, chantypes.NewAmount(100)))

	amt, err := l.Get(f)
	require.NoError(t, err)
	require.Equal(t, "100", amt.String())
}

func TestLedgerDrainZeroesSlot(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)
	require.NoError(t, l.Credit(f, chantypes.NewAmount(9)))

	drained, err := l.Drain(f)
	require.NoError(t, err)
	require.Equal(t, "9", drained.String())

	amt, err := l.Get(f)
	require.NoError(t, err)
	require.True(t, amt.IsZero())
}

func TestLedgerDrainAbsentIsIdempotentZero(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)

	drained, err := l.Drain(f)
	require.NoError(t, err)
	require.True(t, drained.IsZero())
}

func TestLedgerRestoreRecredits(t *testing.T) {
	l := holdings.New(storage.NewMemStore())
	f := testFunding(t)
	require.NoError(t, l.Credit(f, chantypes.NewAmount(9)))

	drained, err := l.Drain(f)
	require.NoError(t, err)

	require.NoError(t, l.Restore(f, drained))
	amt, err := l.Get(f)
	require.NoError(t, err)
	require.Equal(t, "9", amt.String())
}

func TestLedgerTotalFor(t *testing.T) {
	l := holdings.New(storage.NewMemStore())

	kp1, err := chanenc.GenerateL2Keypair()
	require.NoError(t, err)
	kp2, err := chanenc.GenerateL2Keypair()
	require.NoError(t, err)
	params := chantypes.Params{
		Nonce:             chantypes.Nonce{2},
		Participants:      []chanenc.L2Account{kp1.Account, kp2.Account},
		ChallengeDuration: time.Second,
	}
	ch := params.ID()

	require.NoError(t, l.Credit(chantypes.Funding{Channel: ch, Participant: kp1.Account}, chantypes.NewAmount(3)))
	require.NoError(t, l.Credit(chantypes.Funding{Channel: ch, Participant: kp2.Account}, chantypes.NewAmount(4)))

	total, err := l.TotalFor(params)
	require.NoError(t, err)
	require.Equal(t, "7", total.String())
}
