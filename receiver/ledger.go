package receiver

import (
	"context"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

// TxKind enumerates the external ledger transaction kinds the
// receiver understands.
type TxKind int

const (
	// KindTransfer is a regular value transfer between accounts.
	KindTransfer TxKind = iota
	// KindMint is value created directly into an account (e.g. the
	// ledger's native minting operation).
	KindMint
	// KindOther covers every other transaction kind (approvals,
	// burns, etc), none of which fund a deposit.
	KindOther
)

// Transaction is the ledger-level detail the receiver needs out of a
// queried block.
type Transaction struct {
	Kind   TxKind
	To     chantypes.L1Account
	Amount chantypes.Amount
	Memo   uint64
}

// ArchiveRange describes a range of block heights that have been
// moved to archive storage, together with a callback to query that
// archive directly. This mirrors the L1 ledger's
// query_blocks(start, length) -> {blocks, archived_ranges{start,
// length, callback}} response shape (spec.md §6).
type ArchiveRange struct {
	Start  uint64
	Length uint64
	Query  func(ctx context.Context, height uint64) (BlockResult, error)
}

// Contains reports whether height falls within this archived range.
func (a ArchiveRange) Contains(height uint64) bool {
	return height >= a.Start && height < a.Start+a.Length
}

// BlockResult is the outcome of querying one block height. Exactly
// one of Tx or Archive is set when Found is false and the height maps
// into archive storage; Tx is set when the height held a transaction
// this adjudicator should inspect.
type BlockResult struct {
	// Found reports whether a transaction was located at this height
	// on the primary (live) range.
	Found bool
	Tx    Transaction

	// Archive, if non-nil, means the height was not present on the
	// live range but falls within an archived range this callback can
	// query instead. Probing order is always live first, archive
	// second (spec.md §4.5).
	Archive *ArchiveRange
}

// Ledger is the capability the payment receiver depends on to look up
// blocks by height: the "TxQuerier" capability interface from
// spec.md's design notes, parameterized so tests can wire a mock and
// production can wire the real L1 ledger client.
type Ledger interface {
	// QueryBlock looks up the transaction (if any) at height.
	QueryBlock(ctx context.Context, height uint64) (BlockResult, error)
}
