// Package registry implements the channel registry: the mapping from
// ChannelId to the latest RegisteredState the adjudicator has
// accepted for it. There is no garbage collection — concluded
// channels remain so late disputes can be rejected (spec.md §4.3).
package registry

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btclog"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/storage"
)

var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Registry is the channel registry.
type Registry struct {
	store storage.Store
}

// New returns a Registry backed by store.
func New(store storage.Store) *Registry {
	return &Registry{store: store}
}

// Get returns the registered state for channel, and whether one
// exists.
func (r *Registry) Get(channel chantypes.ChannelId) (chantypes.RegisteredState, bool, error) {
	raw, err := r.store.Get(storage.BucketRegistry, channel.Bytes())
	if err == storage.ErrNotFound {
		return chantypes.RegisteredState{}, false, nil
	}
	if err != nil {
		return chantypes.RegisteredState{}, false, fmt.Errorf("registry: get: %w", err)
	}
	rs, err := decodeRegisteredState(raw)
	if err != nil {
		return chantypes.RegisteredState{}, false, err
	}
	return rs, true, nil
}

// Upsert stores rs as the registered state for its channel,
// overwriting any prior entry.
func (r *Registry) Upsert(rs chantypes.RegisteredState) error {
	raw := encodeRegisteredState(rs)
	if err := r.store.Put(storage.BucketRegistry, rs.State.Channel.Bytes(), raw); err != nil {
		return fmt.Errorf("registry: upsert: %w", err)
	}
	log.Debugf("registered state for channel %v at version %d (finalized=%v)",
		rs.State.Channel, rs.State.Version, rs.State.Finalized)
	return nil
}

// encodeRegisteredState serializes a RegisteredState with a small
// fixed layout (not the canonical signing encoding, which only covers
// State): channel (32B) || timeout (u64 LE unix nanos) || version (u64 LE) ||
// finalized (1B) || allocation count (u32 LE) || for each amount:
// length (u32 LE) || bytes.
func encodeRegisteredState(rs chantypes.RegisteredState) []byte {
	var buf bytes.Buffer

	var tsBuf [8]byte
	binary.LittleEndian.PutUint64(tsBuf[:], uint64(rs.Timeout.UnixNano()))
	buf.Write(tsBuf[:])

	var verBuf [8]byte
	binary.LittleEndian.PutUint64(verBuf[:], rs.State.Version)
	buf.Write(verBuf[:])

	if rs.State.Finalized {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}

	var countBuf [4]byte
	binary.LittleEndian.PutUint32(countBuf[:], uint32(len(rs.State.Allocation)))
	buf.Write(countBuf[:])

	for _, a := range rs.State.Allocation {
		enc := a.EncodeForSigning()
		buf.Write(enc)
	}

	out := make([]byte, 0, chantypes.ChannelIdSize+buf.Len())
	out = append(out, rs.State.Channel.Bytes()...)
	out = append(out, buf.Bytes()...)
	return out
}

func decodeRegisteredState(raw []byte) (chantypes.RegisteredState, error) {
	if len(raw) < chantypes.ChannelIdSize+8+8+1+4 {
		return chantypes.RegisteredState{}, fmt.Errorf("registry: corrupt registered state record")
	}
	var channel chantypes.ChannelId
	copy(channel[:], raw[:chantypes.ChannelIdSize])
	raw = raw[chantypes.ChannelIdSize:]

	timeout := time.Unix(0, int64(binary.LittleEndian.Uint64(raw[:8])))
	raw = raw[8:]

	version := binary.LittleEndian.Uint64(raw[:8])
	raw = raw[8:]

	finalized := raw[0] == 1
	raw = raw[1:]

	count := binary.LittleEndian.Uint32(raw[:4])
	raw = raw[4:]

	allocation := make([]chantypes.Amount, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(raw) < 4 {
			return chantypes.RegisteredState{}, fmt.Errorf("registry: truncated amount length")
		}
		n := binary.LittleEndian.Uint32(raw[:4])
		raw = raw[4:]
		if uint32(len(raw)) < n {
			return chantypes.RegisteredState{}, fmt.Errorf("registry: truncated amount bytes")
		}
		amt, err := decodeLEMagnitude(raw[:n])
		if err != nil {
			return chantypes.RegisteredState{}, err
		}
		allocation = append(allocation, amt)
		raw = raw[n:]
	}

	return chantypes.RegisteredState{
		State: chantypes.State{
			Channel:    channel,
			Version:    version,
			Allocation: allocation,
			Finalized:  finalized,
		},
		Timeout: timeout,
	}, nil
}

func decodeLEMagnitude(le []byte) (chantypes.Amount, error) {
	be := make([]byte, len(le))
	for i, b := range le {
		be[len(le)-1-i] = b
	}
	v := new(big.Int).SetBytes(be)
	return chantypes.AmountFromBigInt(v)
}
