package receiver_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/receiver"
	"github.com/perun-network/icp-adjudicator-go/storage"
)

type mockLedger struct {
	blocks map[uint64]receiver.BlockResult
	err    error
}

func (m *mockLedger) QueryBlock(ctx context.Context, height uint64) (receiver.BlockResult, error) {
	if m.err != nil {
		return receiver.BlockResult{}, m.err
	}
	res, ok := m.blocks[height]
	if !ok {
		return receiver.BlockResult{Found: false}, nil
	}
	return res, nil
}

func receiverErrorKind(t *testing.T, err error) chantypes.ReceiverErrorKind {
	t.Helper()
	var rerr *chantypes.ReceiverError
	require.True(t, errors.As(err, &rerr))
	return rerr.Kind
}

func TestReceiverVerifyCreditsUnspent(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{
		10: {Found: true, Tx: receiver.Transaction{
			Kind: receiver.KindTransfer, To: me, Amount: chantypes.NewAmount(42), Memo: 7,
		}},
	}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	amt, err := rcv.Verify(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, "42", amt.String())
}

func TestReceiverVerifyDuplicateHeight(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{
		10: {Found: true, Tx: receiver.Transaction{
			Kind: receiver.KindTransfer, To: me, Amount: chantypes.NewAmount(42), Memo: 7,
		}},
	}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 10)
	require.NoError(t, err)

	_, err = rcv.Verify(context.Background(), 10)
	require.Error(t, err)
	require.Equal(t, chantypes.ErrDuplicateTransaction, receiverErrorKind(t, err))
}

func TestReceiverVerifyWrongRecipient(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	other := chantypes.NewL1Account([]byte("someone-else"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{
		10: {Found: true, Tx: receiver.Transaction{
			Kind: receiver.KindTransfer, To: other, Amount: chantypes.NewAmount(42), Memo: 7,
		}},
	}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 10)
	require.Error(t, err)
	require.Equal(t, chantypes.ErrRecipient, receiverErrorKind(t, err))
}

func TestReceiverVerifyWrongTransactionKind(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{
		10: {Found: true, Tx: receiver.Transaction{
			Kind: receiver.KindOther, To: me, Amount: chantypes.NewAmount(42), Memo: 7,
		}},
	}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 10)
	require.Error(t, err)
	require.Equal(t, chantypes.ErrTransactionType, receiverErrorKind(t, err))
}

func TestReceiverVerifyNotFoundFailsToQuery(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 99)
	require.Error(t, err)
	require.Equal(t, chantypes.ErrFailedToQuery, receiverErrorKind(t, err))
}

func TestReceiverDrainAndCreditBack(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{blocks: map[uint64]receiver.BlockResult{
		10: {Found: true, Tx: receiver.Transaction{
			Kind: receiver.KindTransfer, To: me, Amount: chantypes.NewAmount(42), Memo: 7,
		}},
	}}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 10)
	require.NoError(t, err)

	drained, err := rcv.Drain(7)
	require.NoError(t, err)
	require.Equal(t, "42", drained.String())

	// Draining again returns zero; nothing left.
	drained, err = rcv.Drain(7)
	require.NoError(t, err)
	require.True(t, drained.IsZero())

	require.NoError(t, rcv.CreditBack(7, chantypes.NewAmount(42)))
	restored, err := rcv.Drain(7)
	require.NoError(t, err)
	require.Equal(t, "42", restored.String())
}

func TestReceiverVerifyLedgerQueryError(t *testing.T) {
	me := chantypes.NewL1Account([]byte("adjudicator"))
	ledger := &mockLedger{err: errors.New("network unreachable")}
	rcv := receiver.New(me, ledger, storage.NewMemStore())

	_, err := rcv.Verify(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, chantypes.ErrFailedToQuery, receiverErrorKind(t, err))
}
