package chantypes

import (
	"encoding/hex"
	"fmt"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
)

// NonceSize is the length in bytes of a Nonce.
const NonceSize = 32

// Nonce is chosen by the channel opener and folded into the
// ChannelId derivation so that two channels opened with the same
// participant list never collide.
type Nonce [NonceSize]byte

// Bytes returns the raw nonce bytes.
func (n Nonce) Bytes() []byte {
	return n[:]
}

// ChannelIdSize is the length in bytes of a ChannelId.
const ChannelIdSize = 32

// ChannelId identifies a channel: the first 32 bytes of
// SHA-512(nonce || concat(participant public keys) || challenge_duration).
//
// One historical source revision derived ChannelId as the full 64-byte
// digest; this spec fixes the first-32-bytes rule, and any wire peer
// using the 64-byte form is incompatible.
type ChannelId [ChannelIdSize]byte

// Bytes returns the raw channel id bytes.
func (c ChannelId) Bytes() []byte {
	return c[:]
}

// String renders the channel id as hex, for logs and error messages.
func (c ChannelId) String() string {
	return hex.EncodeToString(c[:])
}

func channelIDFromHash(h chanenc.Hash) ChannelId {
	var id ChannelId
	copy(id[:], h[:ChannelIdSize])
	return id
}

// L1Account is an opaque payable identifier on the external ledger
// (a principal/address). The adjudicator core never interprets these
// bytes; it only compares and forwards them.
type L1Account struct {
	raw []byte
}

// NewL1Account wraps raw bytes as an L1Account.
func NewL1Account(raw []byte) L1Account {
	out := make([]byte, len(raw))
	copy(out, raw)
	return L1Account{raw: out}
}

// Bytes returns the raw identifier bytes.
func (a L1Account) Bytes() []byte {
	out := make([]byte, len(a.raw))
	copy(out, a.raw)
	return out
}

// Equal reports whether two L1Accounts hold the same bytes.
func (a L1Account) Equal(b L1Account) bool {
	if len(a.raw) != len(b.raw) {
		return false
	}
	for i := range a.raw {
		if a.raw[i] != b.raw[i] {
			return false
		}
	}
	return true
}

// String renders the account as hex.
func (a L1Account) String() string {
	return hex.EncodeToString(a.raw)
}

// Validate reports an error if the account carries no identifying
// bytes at all.
func (a L1Account) Validate() error {
	if len(a.raw) == 0 {
		return fmt.Errorf("chantypes: empty L1Account")
	}
	return nil
}
