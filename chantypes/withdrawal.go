package chantypes

import "github.com/perun-network/icp-adjudicator-go/chanenc"

// WithdrawalRequest authorizes paying out a participant's holdings
// slot to an L1Account. It is the signing envelope around Funding +
// Receiver: only the participant named by Funding can authorize this.
type WithdrawalRequest struct {
	Funding   Funding
	Receiver  L1Account
	Signature chanenc.L2Signature
}

// EncodeForSigning returns the canonical byte encoding a participant
// signs to authorize a withdrawal:
//
//	channel (32B) || participant.public_key (32B) || receiver (variable-length identifier bytes)
func (w WithdrawalRequest) EncodeForSigning() []byte {
	buf := make([]byte, 0, ChannelIdSize+chanenc.AccountSize+len(w.Receiver.raw))
	buf = append(buf, w.Funding.Channel.Bytes()...)
	buf = append(buf, w.Funding.Participant.Bytes()...)
	buf = append(buf, w.Receiver.Bytes()...)
	return buf
}

// VerifySignature checks that Signature is a strict Ed25519 signature
// by the funding's participant over the canonical encoding of w.
func (w WithdrawalRequest) VerifySignature() bool {
	return chanenc.VerifyStrict(w.Funding.Participant, w.EncodeForSigning(), w.Signature)
}
