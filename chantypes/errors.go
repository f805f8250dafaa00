package chantypes

import "fmt"

// Error taxonomy for adjudicator operations, following channeldb's
// flat sentinel-value style (channeldb/error.go in the project this
// was grown from) rather than a hierarchy of custom error structs.
// Callers compare with errors.Is; call sites that add detail wrap
// these values with %w.
var (
	// ErrAuthentication is returned when any signature (a channel
	// state or a withdrawal request) fails strict verification.
	ErrAuthentication = fmt.Errorf("chantypes: signature verification failed")

	// ErrNotFinalized is returned when an operation required a
	// settled channel and found none, or required a finalized state
	// and received a non-final one.
	ErrNotFinalized = fmt.Errorf("chantypes: channel is not finalized or not settled")

	// ErrAlreadyConcluded is returned when conclude/dispute targets a
	// channel whose registered state is already settled.
	ErrAlreadyConcluded = fmt.Errorf("chantypes: channel is already concluded")

	// ErrInvalidInput is returned for structural mismatches: params
	// versus state, length mismatches, channel id mismatches.
	ErrInvalidInput = fmt.Errorf("chantypes: invalid input")

	// ErrInsufficientFunding is returned when a state's allocation
	// exceeds on-ledger deposits and under-funding isn't permitted.
	ErrInsufficientFunding = fmt.Errorf("chantypes: insufficient funding")

	// ErrOutdatedState is returned when a proffered state is not
	// strictly newer than the one already registered.
	ErrOutdatedState = fmt.Errorf("chantypes: state is not newer than the registered state")

	// ErrLedgerError is returned when an external ledger transfer
	// failed or timed out after a withdraw had already drained
	// holdings; the caller may retry.
	ErrLedgerError = fmt.Errorf("chantypes: external ledger operation failed")
)

// ReceiverErrorKind enumerates the payment receiver's failure modes.
type ReceiverErrorKind int

const (
	// ErrTransactionType is returned when the queried block height
	// yields a transaction that is not a Transfer or Mint.
	ErrTransactionType ReceiverErrorKind = iota
	// ErrRecipient is returned when the transaction's recipient does
	// not match the adjudicator's own L1 account.
	ErrRecipient
	// ErrDuplicateTransaction is returned when the block height has
	// already been processed.
	ErrDuplicateTransaction
	// ErrFailedToQuery is returned when the ledger query itself
	// failed (network error, timeout, unknown block height).
	ErrFailedToQuery
)

func (k ReceiverErrorKind) String() string {
	switch k {
	case ErrTransactionType:
		return "TransactionType"
	case ErrRecipient:
		return "Recipient"
	case ErrDuplicateTransaction:
		return "DuplicateTransaction"
	case ErrFailedToQuery:
		return "FailedToQuery"
	default:
		return "Unknown"
	}
}

// ReceiverError wraps a ReceiverErrorKind with optional underlying
// detail, returned from the payment receiver's Verify operation.
type ReceiverError struct {
	Kind ReceiverErrorKind
	Err  error
}

func (e *ReceiverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chantypes: receiver error %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("chantypes: receiver error %s", e.Kind)
}

func (e *ReceiverError) Unwrap() error {
	return e.Err
}

// NewReceiverError constructs a ReceiverError of the given kind.
func NewReceiverError(kind ReceiverErrorKind, err error) *ReceiverError {
	return &ReceiverError{Kind: kind, Err: err}
}
