// Package apiserver exposes the adjudicator core over HTTP+JSON, with
// a websocket stream for query_events, following spec.md §6: the wire
// layout is a self-describing format (JSON here), but the signed
// payload encodings inside State and WithdrawalRequest stay the fixed
// byte layout chantypes defines — this package only ever calls
// EncodeForSigning/VerifySignature, never reimplements them.
package apiserver

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/perun-network/icp-adjudicator-go/chanenc"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
	"github.com/perun-network/icp-adjudicator-go/eventlog"
)

// fundingDTO is the wire form of a chantypes.Funding.
type fundingDTO struct {
	Channel     string `json:"channel"`
	Participant string `json:"participant"`
}

func (d fundingDTO) toFunding() (chantypes.Funding, error) {
	channel, err := decodeChannelId(d.Channel)
	if err != nil {
		return chantypes.Funding{}, err
	}
	acc, err := decodeAccount(d.Participant)
	if err != nil {
		return chantypes.Funding{}, err
	}
	return chantypes.Funding{Channel: channel, Participant: acc}, nil
}

func fromFunding(f chantypes.Funding) fundingDTO {
	return fundingDTO{
		Channel:     f.Channel.String(),
		Participant: hex.EncodeToString(f.Participant.Bytes()),
	}
}

type paramsDTO struct {
	Nonce             string   `json:"nonce"`
	Participants      []string `json:"participants"`
	ChallengeDuration int64    `json:"challenge_duration_ns"`
}

func (d paramsDTO) toParams() (chantypes.Params, error) {
	nonceRaw, err := hex.DecodeString(d.Nonce)
	if err != nil || len(nonceRaw) != chantypes.NonceSize {
		return chantypes.Params{}, fmt.Errorf("%w: malformed nonce", chantypes.ErrInvalidInput)
	}
	var nonce chantypes.Nonce
	copy(nonce[:], nonceRaw)

	parts := make([]chanenc.L2Account, 0, len(d.Participants))
	for _, p := range d.Participants {
		acc, err := decodeAccount(p)
		if err != nil {
			return chantypes.Params{}, err
		}
		parts = append(parts, acc)
	}

	p := chantypes.Params{
		Nonce:             nonce,
		Participants:      parts,
		ChallengeDuration: time.Duration(d.ChallengeDuration),
	}
	return p, p.Validate()
}

type stateDTO struct {
	Channel    string   `json:"channel"`
	Version    uint64   `json:"version"`
	Allocation []string `json:"allocation"`
	Finalized  bool     `json:"finalized"`
}

func (d stateDTO) toState() (chantypes.State, error) {
	channel, err := decodeChannelId(d.Channel)
	if err != nil {
		return chantypes.State{}, err
	}
	allocation := make([]chantypes.Amount, 0, len(d.Allocation))
	for _, a := range d.Allocation {
		var amt chantypes.Amount
		if err := amt.UnmarshalText([]byte(a)); err != nil {
			return chantypes.State{}, fmt.Errorf("%w: %v", chantypes.ErrInvalidInput, err)
		}
		allocation = append(allocation, amt)
	}
	return chantypes.State{
		Channel:    channel,
		Version:    d.Version,
		Allocation: allocation,
		Finalized:  d.Finalized,
	}, nil
}

func fromState(s chantypes.State) stateDTO {
	allocation := make([]string, len(s.Allocation))
	for i, a := range s.Allocation {
		allocation[i] = a.String()
	}
	return stateDTO{
		Channel:    s.Channel.String(),
		Version:    s.Version,
		Allocation: allocation,
		Finalized:  s.Finalized,
	}
}

type fullySignedStateDTO struct {
	State stateDTO `json:"state"`
	Sigs  []string `json:"sigs"`
}

func (d fullySignedStateDTO) toFullySignedState() (chantypes.FullySignedState, error) {
	state, err := d.State.toState()
	if err != nil {
		return chantypes.FullySignedState{}, err
	}
	sigs := make([]chanenc.L2Signature, 0, len(d.Sigs))
	for _, s := range d.Sigs {
		sig, err := decodeSignature(s)
		if err != nil {
			return chantypes.FullySignedState{}, err
		}
		sigs = append(sigs, sig)
	}
	return chantypes.FullySignedState{State: state, Sigs: sigs}, nil
}

type registeredStateDTO struct {
	State   stateDTO  `json:"state"`
	Timeout time.Time `json:"timeout"`
}

func fromRegisteredState(rs chantypes.RegisteredState) registeredStateDTO {
	return registeredStateDTO{State: fromState(rs.State), Timeout: rs.Timeout}
}

type withdrawalRequestDTO struct {
	Channel     string `json:"channel"`
	Participant string `json:"participant"`
	Receiver    string `json:"receiver"`
	Signature   string `json:"signature"`
}

func (d withdrawalRequestDTO) toWithdrawalRequest() (chantypes.WithdrawalRequest, error) {
	channel, err := decodeChannelId(d.Channel)
	if err != nil {
		return chantypes.WithdrawalRequest{}, err
	}
	acc, err := decodeAccount(d.Participant)
	if err != nil {
		return chantypes.WithdrawalRequest{}, err
	}
	receiverRaw, err := hex.DecodeString(d.Receiver)
	if err != nil {
		return chantypes.WithdrawalRequest{}, fmt.Errorf("%w: malformed receiver", chantypes.ErrInvalidInput)
	}
	sig, err := decodeSignature(d.Signature)
	if err != nil {
		return chantypes.WithdrawalRequest{}, err
	}
	return chantypes.WithdrawalRequest{
		Funding:   chantypes.Funding{Channel: channel, Participant: acc},
		Receiver:  chantypes.NewL1Account(receiverRaw),
		Signature: sig,
	}, nil
}

type amountDTO struct {
	Amount string `json:"amount"`
}

func fromAmount(a chantypes.Amount) amountDTO {
	return amountDTO{Amount: a.String()}
}

type eventDTO struct {
	Kind      string    `json:"kind"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Who       string    `json:"who,omitempty"`
	Total     string    `json:"total,omitempty"`
	State     *stateDTO `json:"state,omitempty"`
}

func fromEvent(ev eventlog.Event) eventDTO {
	out := eventDTO{
		Kind:      ev.Kind.String(),
		Channel:   ev.Channel.String(),
		Timestamp: ev.Timestamp,
	}
	switch ev.Kind {
	case eventlog.Funded:
		out.Who = hex.EncodeToString(ev.Who.Bytes())
		out.Total = ev.Total.String()
	case eventlog.Disputed, eventlog.Concluded:
		s := fromState(ev.State)
		out.State = &s
	}
	return out
}

type errorDTO struct {
	Error string `json:"error"`
}

func decodeChannelId(s string) (chantypes.ChannelId, error) {
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != chantypes.ChannelIdSize {
		return chantypes.ChannelId{}, fmt.Errorf("%w: malformed channel id", chantypes.ErrInvalidInput)
	}
	var id chantypes.ChannelId
	copy(id[:], raw)
	return id, nil
}

func decodeAccount(s string) (chanenc.L2Account, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return chanenc.L2Account{}, fmt.Errorf("%w: malformed account", chantypes.ErrInvalidInput)
	}
	acc, err := chanenc.NewL2Account(raw)
	if err != nil {
		return chanenc.L2Account{}, fmt.Errorf("%w: %v", chantypes.ErrInvalidInput, err)
	}
	return acc, nil
}

func decodeSignature(s string) (chanenc.L2Signature, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return chanenc.L2Signature{}, fmt.Errorf("%w: malformed signature", chantypes.ErrInvalidInput)
	}
	sig, err := chanenc.NewL2Signature(raw)
	if err != nil {
		return chanenc.L2Signature{}, fmt.Errorf("%w: %v", chantypes.ErrInvalidInput, err)
	}
	return sig, nil
}
