package chantypes

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
)

// State is the mutable, versioned channel state: the current
// allocation of funds to participants (by index, parallel to
// Params.Participants) and whether it is finalized (a cooperative,
// immediately-settling close).
type State struct {
	Channel    ChannelId
	Version    uint64
	Allocation []Amount
	Finalized  bool
}

// EncodeForSigning returns the canonical byte encoding participants
// sign over:
//
//	channel (32B) || version (u64 LE) || for each a in allocation:
//	a.EncodeForSigning() || finalized (1B: 0 or 1)
//
// This layout must never be replaced by a self-describing wire
// format — independently written clients need to agree on it bit for
// bit.
func (s State) EncodeForSigning() []byte {
	buf := make([]byte, 0, ChannelIdSize+8+1)
	buf = append(buf, s.Channel.Bytes()...)

	var verBuf [8]byte
	binary.LittleEndian.PutUint64(verBuf[:], s.Version)
	buf = append(buf, verBuf[:]...)

	for _, a := range s.Allocation {
		buf = append(buf, a.EncodeForSigning()...)
	}

	if s.Finalized {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return buf
}

// MayBeUnderfunded reports whether this state is an "under-funded
// initial state": version zero and not finalized. Such states are the
// only ones a dispute may register without full funding, to support
// refund flows when a channel opening never completes.
func (s State) MayBeUnderfunded() bool {
	return s.Version == 0 && !s.Finalized
}

// ValidateAgainst checks the structural invariants that tie a State to
// the Params it's supposed to belong to: the channel id must match,
// and the allocation must have one entry per participant.
func (s State) ValidateAgainst(p Params) error {
	if s.Channel != p.ID() {
		return fmt.Errorf("%w: state channel id does not match params", ErrInvalidInput)
	}
	if len(s.Allocation) != len(p.Participants) {
		return fmt.Errorf("%w: allocation length %d does not match participant count %d",
			ErrInvalidInput, len(s.Allocation), len(p.Participants))
	}
	return nil
}

// FullySignedState pairs a State with one signature per participant,
// in participant order.
type FullySignedState struct {
	State State
	Sigs  []chanenc.L2Signature
}

// VerifySignatures checks that every signature in sigs is a strict
// Ed25519 signature by the corresponding participant over the
// canonical encoding of state. It returns ErrInvalidInput if the
// number of signatures differs from the number of participants, and
// ErrAuthentication if any signature does not verify.
func VerifySignatures(participants []chanenc.L2Account, state State, sigs []chanenc.L2Signature) error {
	if len(sigs) != len(participants) {
		return fmt.Errorf("%w: expected %d signatures, got %d",
			ErrInvalidInput, len(participants), len(sigs))
	}
	msg := state.EncodeForSigning()
	for i, acc := range participants {
		if !chanenc.VerifyStrict(acc, msg, sigs[i]) {
			return fmt.Errorf("%w: signature %d invalid for participant", ErrAuthentication, i)
		}
	}
	return nil
}

// RegisteredState is the latest state an adjudicator has accepted for
// a channel, together with the timeout at which it becomes binding.
// Timeout is ignored for finalized states.
type RegisteredState struct {
	State   State
	Timeout time.Time
}

// Settled reports whether this registered state has become binding:
// it is finalized, or now is at or past its timeout.
func (rs RegisteredState) Settled(now time.Time) bool {
	if rs.State.Finalized {
		return true
	}
	return !now.Before(rs.Timeout)
}
