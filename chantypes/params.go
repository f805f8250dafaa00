package chantypes

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
)

// Params holds the immutable parameters of a channel: its opener's
// nonce, the ordered participant list, and the challenge duration used
// to time out disputed, non-final states.
type Params struct {
	Nonce             Nonce
	Participants      []chanenc.L2Account
	ChallengeDuration time.Duration
}

// Validate checks the structural invariants of Params that must hold
// regardless of any particular operation: at least one participant.
func (p Params) Validate() error {
	if len(p.Participants) == 0 {
		return fmt.Errorf("%w: params must declare at least one participant", ErrInvalidInput)
	}
	return nil
}

// encodeForID returns nonce || concat(participant pubkeys) ||
// challenge_duration (u64 LE nanoseconds), the exact byte layout
// ChannelId is derived from.
func (p Params) encodeForID() []byte {
	buf := make([]byte, 0, NonceSize+len(p.Participants)*chanenc.AccountSize+8)
	buf = append(buf, p.Nonce.Bytes()...)
	for _, acc := range p.Participants {
		buf = append(buf, acc.Bytes()...)
	}
	var durBuf [8]byte
	binary.LittleEndian.PutUint64(durBuf[:], uint64(p.ChallengeDuration.Nanoseconds()))
	return append(buf, durBuf[:]...)
}

// ID derives this channel's ChannelId: the first 32 bytes of
// SHA-512(nonce || concat(participant_pk) || challenge_duration).
func (p Params) ID() ChannelId {
	return channelIDFromHash(chanenc.Sum512(p.encodeForID()))
}

// IndexOf returns the index of acc within the participant list, or -1
// if acc is not a participant.
func (p Params) IndexOf(acc chanenc.L2Account) int {
	for i, part := range p.Participants {
		if part.Equal(acc) {
			return i
		}
	}
	return -1
}
