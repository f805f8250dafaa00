// Package receiver implements the payment receiver: it watches the
// external L1 ledger by block-height lookup, verifies incoming
// transfers addressed to this adjudicator, deduplicates by block
// height, and credits unspent balances keyed by a funding memo
// (spec.md §4.5).
package receiver

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/btcsuite/btclog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/storage"
)

var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Receiver is the payment receiver.
type Receiver struct {
	myAccount chantypes.L1Account
	ledger    Ledger
	store     storage.Store

	// group deduplicates concurrent Verify calls for the same block
	// height onto a single in-flight query, so the "idempotent
	// replay" invariant (spec.md §8.4) holds under concurrent
	// callers, not only sequential ones.
	group singleflight.Group

	// limiter bounds outbound ledger queries (spec.md §5: external
	// ledger queries must be bounded).
	limiter *rate.Limiter

	mu sync.Mutex
}

// Option configures a Receiver.
type Option func(*Receiver)

// WithRateLimit overrides the default outbound query rate limit.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(rcv *Receiver) {
		rcv.limiter = rate.NewLimiter(r, burst)
	}
}

// New returns a Receiver watching ledger on behalf of myAccount,
// persisting known heights and unspent balances through store.
func New(myAccount chantypes.L1Account, ledger Ledger, store storage.Store, opts ...Option) *Receiver {
	rcv := &Receiver{
		myAccount: myAccount,
		ledger:    ledger,
		store:     store,
		limiter:   rate.NewLimiter(rate.Limit(50), 10),
	}
	for _, opt := range opts {
		opt(rcv)
	}
	return rcv
}

func heightKey(height uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], height)
	return buf[:]
}

func memoKey(memo uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], memo)
	return buf[:]
}

func encodeAmount(a chantypes.Amount) []byte {
	return []byte(a.String())
}

func decodeAmount(raw []byte) (chantypes.Amount, error) {
	v, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return chantypes.Amount{}, fmt.Errorf("receiver: corrupt amount encoding %q", raw)
	}
	return chantypes.AmountFromBigInt(v)
}

func (r *Receiver) isKnown(height uint64) (bool, error) {
	_, err := r.store.Get(storage.BucketKnownHeights, heightKey(height))
	if err == storage.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Verify queries blockHeight on the external ledger, credits the
// transaction's memo as unspent, and returns the credited amount.
// Replaying the same blockHeight again returns ErrDuplicateTransaction
// and credits nothing additional.
func (r *Receiver) Verify(ctx context.Context, blockHeight uint64) (chantypes.Amount, error) {
	v, err, _ := r.group.Do(fmt.Sprint(blockHeight), func() (interface{}, error) {
		return r.verifyOnce(ctx, blockHeight)
	})
	if err != nil {
		return chantypes.Amount{}, err
	}
	return v.(chantypes.Amount), nil
}

func (r *Receiver) verifyOnce(ctx context.Context, blockHeight uint64) (chantypes.Amount, error) {
	r.mu.Lock()
	known, err := r.isKnown(blockHeight)
	r.mu.Unlock()
	if err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}
	if known {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrDuplicateTransaction, nil)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}

	result, err := r.ledger.QueryBlock(ctx, blockHeight)
	if err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}

	// Live range first; archive range only if the live range didn't
	// have it (spec.md §4.5 probing order).
	if !result.Found && result.Archive != nil && result.Archive.Contains(blockHeight) {
		result, err = result.Archive.Query(ctx, blockHeight)
		if err != nil {
			return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
		}
	}

	if !result.Found {
		return chantypes.Amount{}, chantypes.NewReceiverError(
			chantypes.ErrFailedToQuery, fmt.Errorf("receiver: no transaction at height %d", blockHeight))
	}

	tx := result.Tx
	if tx.Kind != KindTransfer && tx.Kind != KindMint {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrTransactionType, nil)
	}
	if !tx.To.Equal(r.myAccount) {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrRecipient, nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the lock: another caller may have raced us
	// between the optimistic check above and the (slow) ledger query.
	known, err = r.isKnown(blockHeight)
	if err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}
	if known {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrDuplicateTransaction, nil)
	}

	if err := r.store.Put(storage.BucketKnownHeights, heightKey(blockHeight), []byte{1}); err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}

	cur, err := r.unspentLocked(tx.Memo)
	if err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}
	next := cur.Add(tx.Amount)
	if err := r.store.Put(storage.BucketUnspent, memoKey(tx.Memo), encodeAmount(next)); err != nil {
		return chantypes.Amount{}, chantypes.NewReceiverError(chantypes.ErrFailedToQuery, err)
	}

	log.Infof("credited %s to memo %x from block %d", tx.Amount, tx.Memo, blockHeight)
	return tx.Amount, nil
}

func (r *Receiver) unspentLocked(memo uint64) (chantypes.Amount, error) {
	raw, err := r.store.Get(storage.BucketUnspent, memoKey(memo))
	if err == storage.ErrNotFound {
		return chantypes.ZeroAmount, nil
	}
	if err != nil {
		return chantypes.Amount{}, err
	}
	return decodeAmount(raw)
}

// Drain removes and returns the unspent balance credited to memo,
// zero if none. The adjudicator calls this from deposit(funding) with
// memo = funding.Memo().
func (r *Receiver) Drain(memo uint64) (chantypes.Amount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.unspentLocked(memo)
	if err != nil {
		return chantypes.Amount{}, err
	}
	if err := r.store.Delete(storage.BucketUnspent, memoKey(memo)); err != nil {
		return chantypes.Amount{}, err
	}
	return cur, nil
}

// CreditBack restores amount to memo's unspent balance. The
// adjudicator calls this to undo a Drain when the subsequent holdings
// credit fails, so a deposit failure never loses funds.
func (r *Receiver) CreditBack(memo uint64, amount chantypes.Amount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.unspentLocked(memo)
	if err != nil {
		return err
	}
	return r.store.Put(storage.BucketUnspent, memoKey(memo), encodeAmount(cur.Add(amount)))
}
