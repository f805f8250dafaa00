// Package adjudicator implements the on-chain adjudicator core: the
// deposit/conclude/dispute/withdraw protocol that combines the
// holdings ledger, channel registry, and payment receiver into the
// single trustless arbiter spec.md describes (§4.4).
package adjudicator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/btcsuite/btclog"
	goerrors "github.com/go-errors/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/perun-network/icp-adjudicator-go/chantime"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/eventlog"
	"github.com/perun-network/icp-adjudicator-go/holdings"
	"github.com/perun-network/icp-adjudicator-go/receiver"
	"github.com/perun-network/icp-adjudicator-go/registry"
)

var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Adjudicator is the single logical actor described in spec.md §5: it
// holds the holdings ledger, channel registry, and payment receiver,
// and processes each external call to completion before the next
// begins on the same channel.
type Adjudicator struct {
	holdings   *holdings.Ledger
	registry   *registry.Registry
	receiver   *receiver.Receiver
	events     eventlog.Log
	clock      chantime.Clock
	transferer Transferer
	locks      *lockManager
	metrics    *metrics
}

// Config bundles the collaborators an Adjudicator is built from.
type Config struct {
	Holdings   *holdings.Ledger
	Registry   *registry.Registry
	Receiver   *receiver.Receiver
	Events     eventlog.Log
	Clock      chantime.Clock
	Transferer Transferer
	// MetricsRegisterer is where this adjudicator's prometheus
	// collectors are registered. Defaults to prometheus.DefaultRegisterer.
	MetricsRegisterer prometheus.Registerer
}

// New constructs an Adjudicator from cfg.
func New(cfg Config) *Adjudicator {
	reg := cfg.MetricsRegisterer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Adjudicator{
		holdings:   cfg.Holdings,
		registry:   cfg.Registry,
		receiver:   cfg.Receiver,
		events:     cfg.Events,
		clock:      cfg.Clock,
		transferer: cfg.Transferer,
		locks:      newLockManager(),
		metrics:    newMetrics(reg),
	}
}

// QueryHoldings returns funding's current balance.
func (a *Adjudicator) QueryHoldings(funding chantypes.Funding) (chantypes.Amount, error) {
	return a.holdings.Get(funding)
}

// QueryState returns the registered state for channel, if any.
func (a *Adjudicator) QueryState(channel chantypes.ChannelId) (chantypes.RegisteredState, bool, error) {
	return a.registry.Get(channel)
}

// QueryEvents returns every event recorded for channel since the
// given timestamp (exclusive).
func (a *Adjudicator) QueryEvents(channel chantypes.ChannelId, since time.Time) ([]eventlog.Event, error) {
	return a.events.Events(channel, since)
}

// DepositMocked is a test/simulation path that credits holdings
// directly without consulting the payment receiver. Production
// deployments gate this behind apiserver's macaroon check; it is
// never removed outright because integration tests rely on it
// alongside the real deposit path (see SPEC_FULL.md §D).
func (a *Adjudicator) DepositMocked(funding chantypes.Funding, amount chantypes.Amount) error {
	if err := a.holdings.Credit(funding, amount); err != nil {
		return fmt.Errorf("adjudicator: deposit_mocked: %w", err)
	}
	return nil
}

// TransactionNotification proves an external-ledger transfer occurred
// at blockHeight, crediting its memo's unspent balance. Replaying the
// same blockHeight returns a ReceiverError wrapping
// ErrDuplicateTransaction and credits nothing additional.
func (a *Adjudicator) TransactionNotification(ctx context.Context, blockHeight uint64) (chantypes.Amount, error) {
	amt, err := a.receiver.Verify(ctx, blockHeight)
	if err != nil {
		var rcvErr *chantypes.ReceiverError
		if errors.As(err, &rcvErr) && rcvErr.Kind == chantypes.ErrDuplicateTransaction {
			a.metrics.receiverDupTotal.Inc()
		}
		return chantypes.Amount{}, err
	}
	return amt, nil
}

// Deposit moves the proven-unspent balance for funding.Memo() out of
// the payment receiver and into holdings[funding]. The user must have
// already called TransactionNotification for the transfer that
// credited this memo.
func (a *Adjudicator) Deposit(funding chantypes.Funding) (chantypes.Amount, error) {
	amount, err := a.receiver.Drain(funding.Memo())
	if err != nil {
		return chantypes.Amount{}, goerrors.Errorf("adjudicator: deposit: drain memo: %v", err)
	}
	if amount.IsZero() {
		return chantypes.ZeroAmount, nil
	}
	if err := a.holdings.Credit(funding, amount); err != nil {
		// Restore the drained balance so a retry can pick it up; the
		// deposit as a whole must leave state exactly as it found it
		// on failure (spec.md §7).
		if restoreErr := a.receiver.CreditBack(funding.Memo(), amount); restoreErr != nil {
			log.Errorf("adjudicator: deposit: failed to restore drained memo after credit "+
				"error: %v (original error: %v)", restoreErr, err)
		}
		return chantypes.Amount{}, goerrors.Errorf("adjudicator: deposit: credit holdings: %v", err)
	}

	total, err := a.holdings.Get(funding)
	if err != nil {
		log.Errorf("adjudicator: deposit: read back total for event: %v", err)
		total = amount
	}

	a.metrics.depositsTotal.Inc()
	now := a.clock.Now()
	if err := a.events.RegisterEvent(now, eventlog.Event{
		Kind:      eventlog.Funded,
		Channel:   funding.Channel,
		Timestamp: now,
		Who:       funding.Participant,
		Total:     total,
	}); err != nil {
		log.Warnf("adjudicator: deposit: event delivery failed (state unaffected): %v", err)
	}
	return amount, nil
}

// validateSigned checks the structural invariants shared by conclude
// and dispute: the signed state's channel id must match params.ID(),
// the signature count must match the participant count, and the
// allocation must have one entry per participant.
func validateSigned(params chantypes.Params, signed chantypes.FullySignedState) (chantypes.ChannelId, error) {
	ch := params.ID()
	if signed.State.Channel != ch {
		return ch, fmt.Errorf("%w: signed state channel id does not match params", chantypes.ErrInvalidInput)
	}
	if len(signed.Sigs) != len(params.Participants) {
		return ch, fmt.Errorf("%w: expected %d signatures, got %d",
			chantypes.ErrInvalidInput, len(params.Participants), len(signed.Sigs))
	}
	if len(signed.State.Allocation) != len(params.Participants) {
		return ch, fmt.Errorf("%w: expected %d allocation entries, got %d",
			chantypes.ErrInvalidInput, len(params.Participants), len(signed.State.Allocation))
	}
	return ch, nil
}

// overwriteHoldings sets each participant's funding slot to its
// allocation share, used whenever conclude/dispute accept a fully
// funded state.
func (a *Adjudicator) overwriteHoldings(channel chantypes.ChannelId, params chantypes.Params, allocation []chantypes.Amount) error {
	for i, acc := range params.Participants {
		funding := chantypes.Funding{Channel: channel, Participant: acc}
		if err := a.holdings.Set(funding, allocation[i]); err != nil {
			return err
		}
	}
	return nil
}

// Conclude performs a cooperative close of a finalized, fully-signed
// state (spec.md §4.4.2).
func (a *Adjudicator) Conclude(params chantypes.Params, signed chantypes.FullySignedState) error {
	ch, err := validateSigned(params, signed)
	if err != nil {
		return err
	}

	lock := a.locks.lockFor(ch)
	lock.Lock()
	defer lock.Unlock()

	now := a.clock.Now()

	prior, ok, err := a.registry.Get(ch)
	if err != nil {
		return fmt.Errorf("adjudicator: conclude: %w", err)
	}
	if ok && prior.Settled(now) {
		return chantypes.ErrAlreadyConcluded
	}

	if !signed.State.Finalized {
		return chantypes.ErrNotFinalized
	}

	if err := chantypes.VerifySignatures(params.Participants, signed.State, signed.Sigs); err != nil {
		return err
	}

	total, err := a.holdings.TotalFor(params)
	if err != nil {
		return fmt.Errorf("adjudicator: conclude: %w", err)
	}
	required := chantypes.SumAmounts(signed.State.Allocation)
	if total.LessThan(required) && !signed.State.MayBeUnderfunded() {
		return chantypes.ErrInsufficientFunding
	}
	if err := a.overwriteHoldings(ch, params, signed.State.Allocation); err != nil {
		return fmt.Errorf("adjudicator: conclude: %w", err)
	}

	if err := a.registry.Upsert(chantypes.RegisteredState{State: signed.State, Timeout: time.Time{}}); err != nil {
		return fmt.Errorf("adjudicator: conclude: %w", err)
	}

	a.metrics.concludesTotal.Inc()
	if err := a.events.RegisterEvent(now, eventlog.Event{
		Kind:      eventlog.Concluded,
		Channel:   ch,
		Timestamp: now,
		State:     signed.State,
	}); err != nil {
		log.Warnf("adjudicator: conclude: event delivery failed (state unaffected): %v", err)
	}
	return nil
}

// Dispute registers a newer signed state, final or not, as the
// channel's adversarial close point (spec.md §4.4.3).
func (a *Adjudicator) Dispute(params chantypes.Params, signed chantypes.FullySignedState) error {
	ch, err := validateSigned(params, signed)
	if err != nil {
		return err
	}

	lock := a.locks.lockFor(ch)
	lock.Lock()
	defer lock.Unlock()

	now := a.clock.Now()

	prior, hasPrior, err := a.registry.Get(ch)
	if err != nil {
		return fmt.Errorf("adjudicator: dispute: %w", err)
	}
	if hasPrior {
		if prior.Settled(now) {
			return chantypes.ErrAlreadyConcluded
		}
		if !(prior.State.Version < signed.State.Version) {
			return chantypes.ErrOutdatedState
		}
	}

	if err := chantypes.VerifySignatures(params.Participants, signed.State, signed.Sigs); err != nil {
		return err
	}

	total, err := a.holdings.TotalFor(params)
	if err != nil {
		return fmt.Errorf("adjudicator: dispute: %w", err)
	}
	required := chantypes.SumAmounts(signed.State.Allocation)
	fullyFunded := !total.LessThan(required)
	if !fullyFunded {
		if !signed.State.MayBeUnderfunded() {
			return chantypes.ErrInsufficientFunding
		}
	} else {
		if err := a.overwriteHoldings(ch, params, signed.State.Allocation); err != nil {
			return fmt.Errorf("adjudicator: dispute: %w", err)
		}
	}

	timeout := time.Time{}
	if !signed.State.Finalized {
		timeout = now.Add(params.ChallengeDuration)
	}
	if err := a.registry.Upsert(chantypes.RegisteredState{State: signed.State, Timeout: timeout}); err != nil {
		return fmt.Errorf("adjudicator: dispute: %w", err)
	}

	a.metrics.disputesTotal.Inc()
	if err := a.events.RegisterEvent(now, eventlog.Event{
		Kind:      eventlog.Disputed,
		Channel:   ch,
		Timestamp: now,
		State:     signed.State,
	}); err != nil {
		log.Warnf("adjudicator: dispute: event delivery failed (state unaffected): %v", err)
	}
	return nil
}

// Withdraw pays out req's funding slot to req.Receiver once the
// channel has settled (spec.md §4.4.4). The adjudicator lock is
// released before the external transfer so an unresponsive ledger
// never wedges other channels' operations; on transfer failure the
// drained amount is restored and ErrLedgerError is returned.
func (a *Adjudicator) Withdraw(ctx context.Context, req chantypes.WithdrawalRequest) (chantypes.Amount, error) {
	if !req.VerifySignature() {
		return chantypes.Amount{}, chantypes.ErrAuthentication
	}

	ch := req.Funding.Channel
	lock := a.locks.lockFor(ch)

	lock.Lock()
	rs, ok, err := a.registry.Get(ch)
	if err != nil {
		lock.Unlock()
		return chantypes.Amount{}, fmt.Errorf("adjudicator: withdraw: %w", err)
	}
	if !ok || !rs.Settled(a.clock.Now()) {
		lock.Unlock()
		return chantypes.Amount{}, chantypes.ErrNotFinalized
	}

	amount, err := a.holdings.Drain(req.Funding)
	lock.Unlock()
	if err != nil {
		return chantypes.Amount{}, fmt.Errorf("adjudicator: withdraw: %w", err)
	}

	a.metrics.withdrawalsTotal.Inc()
	if amount.IsZero() {
		return chantypes.ZeroAmount, nil
	}

	if _, err := a.transferer.Transfer(ctx, req.Receiver, amount); err != nil {
		lock.Lock()
		if restoreErr := a.holdings.Restore(req.Funding, amount); restoreErr != nil {
			log.Errorf("adjudicator: withdraw: failed to restore drained holdings after ledger "+
				"error: %v (original error: %v)", restoreErr, err)
		}
		lock.Unlock()
		return chantypes.Amount{}, fmt.Errorf("%w: %v", chantypes.ErrLedgerError, err)
	}

	return amount, nil
}
