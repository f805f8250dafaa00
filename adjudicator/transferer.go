package adjudicator

import (
	"context"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

// Transferer is the external ledger's value-movement capability:
// transfer(args) -> Result<BlockHeight, LedgerError> in spec.md §6.
// Withdraw calls this only after releasing the adjudicator lock
// (spec.md §5) and restores the drained holdings if it fails.
type Transferer interface {
	Transfer(ctx context.Context, to chantypes.L1Account, amount chantypes.Amount) (blockHeight uint64, err error)
}
