// Package holdings implements the holdings ledger: the mapping from a
// Funding slot to the Amount currently held in custody for it.
package holdings

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/btcsuite/btclog"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/storage"
)

// log is this package's logger, following the teacher's
// per-package-logger convention (contractcourt, htlcswitch, discovery
// all declare one the same way). Disabled by default; wired up by
// UseLogger.
var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Ledger is the holdings ledger: a mapping from Funding to Amount,
// persisted through a storage.Store. It never fails to credit, and
// credit/drain are safe for concurrent use across distinct funding
// slots (distinct slots commute, per spec.md §5); same-slot calls
// serialize on the internal lock.
type Ledger struct {
	mu    sync.Mutex
	store storage.Store
}

// New returns a Ledger backed by store.
func New(store storage.Store) *Ledger {
	return &Ledger{store: store}
}

func fundingKey(f chantypes.Funding) []byte {
	buf := make([]byte, 0, chantypes.ChannelIdSize+chanenc.AccountSize)
	buf = append(buf, f.Channel.Bytes()...)
	buf = append(buf, f.Participant.Bytes()...)
	return buf
}

func encodeAmount(a chantypes.Amount) []byte {
	return []byte(a.String())
}

func decodeAmount(raw []byte) (chantypes.Amount, error) {
	v, ok := new(big.Int).SetString(string(raw), 10)
	if !ok {
		return chantypes.Amount{}, fmt.Errorf("holdings: corrupt amount encoding %q", raw)
	}
	return chantypes.AmountFromBigInt(v)
}

// Get returns the current balance of funding, or zero if the slot has
// never been credited.
func (l *Ledger) Get(funding chantypes.Funding) (chantypes.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.getLocked(funding)
}

func (l *Ledger) getLocked(funding chantypes.Funding) (chantypes.Amount, error) {
	raw, err := l.store.Get(storage.BucketHoldings, fundingKey(funding))
	if err == storage.ErrNotFound {
		return chantypes.ZeroAmount, nil
	}
	if err != nil {
		return chantypes.Amount{}, fmt.Errorf("holdings: get: %w", err)
	}
	return decodeAmount(raw)
}

// Credit adds amount to funding's balance, creating the slot if
// absent. It never fails on account of the funding's prior state.
func (l *Ledger) Credit(funding chantypes.Funding, amount chantypes.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.getLocked(funding)
	if err != nil {
		return err
	}
	next := cur.Add(amount)
	if err := l.store.Put(storage.BucketHoldings, fundingKey(funding), encodeAmount(next)); err != nil {
		return fmt.Errorf("holdings: credit: %w", err)
	}
	log.Debugf("credited %s to funding %x (new balance %s)", amount, fundingKey(funding), next)
	return nil
}

// Set overwrites funding's balance to amount, used by conclude/dispute
// to bring holdings in line with a fully-funded allocation.
func (l *Ledger) Set(funding chantypes.Funding, amount chantypes.Amount) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Put(storage.BucketHoldings, fundingKey(funding), encodeAmount(amount)); err != nil {
		return fmt.Errorf("holdings: set: %w", err)
	}
	return nil
}

// Drain returns funding's current balance and zeroes the slot. It is
// called only from withdraw, and returning zero for an absent or
// already-drained slot is not an error (redundant withdrawals are
// idempotent, per spec.md §8.6).
func (l *Ledger) Drain(funding chantypes.Funding) (chantypes.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur, err := l.getLocked(funding)
	if err != nil {
		return chantypes.Amount{}, err
	}
	if err := l.store.Delete(storage.BucketHoldings, fundingKey(funding)); err != nil {
		return chantypes.Amount{}, fmt.Errorf("holdings: drain: %w", err)
	}
	return cur, nil
}

// Restore re-credits funding with amount, used to undo a Drain when
// the subsequent external transfer fails (spec.md §4.4.4 step 4).
func (l *Ledger) Restore(funding chantypes.Funding, amount chantypes.Amount) error {
	return l.Credit(funding, amount)
}

// TotalFor returns the sum, across all of params' participants, of
// their current holdings for this channel.
func (l *Ledger) TotalFor(params chantypes.Params) (chantypes.Amount, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := params.ID()
	total := chantypes.ZeroAmount
	for _, p := range params.Participants {
		amt, err := l.getLocked(chantypes.Funding{Channel: ch, Participant: p})
		if err != nil {
			return chantypes.Amount{}, err
		}
		total = total.Add(amt)
	}
	return total, nil
}
