package chantypes

import (
	"encoding/binary"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
)

// Funding identifies one participant's custody slot within one
// channel: the unit the holdings ledger is keyed by.
type Funding struct {
	Channel     ChannelId
	Participant chanenc.L2Account
}

// Memo derives the 8-byte tag used to correlate inbound external-
// ledger transfers with this funding slot: the first 8 bytes of
// SHA-512(channel || participant_pk), interpreted as a little-endian
// uint64. Different fundings yield different memos with high
// probability (collision-resistance of the underlying hash).
func (f Funding) Memo() uint64 {
	buf := make([]byte, 0, ChannelIdSize+chanenc.AccountSize)
	buf = append(buf, f.Channel.Bytes()...)
	buf = append(buf, f.Participant.Bytes()...)
	digest := chanenc.Sum512(buf)
	return binary.LittleEndian.Uint64(digest[:8])
}
