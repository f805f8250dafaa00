package chanenc

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// AccountSize is the length in bytes of an L2Account's public key.
const AccountSize = ed25519.PublicKeySize

// SignatureSize is the length in bytes of an L2Signature.
const SignatureSize = ed25519.SignatureSize

// L2Account is an off-chain participant identity: an Ed25519 public
// key. Equality and hashing are always over the canonical 32-byte
// encoding, never over the ed25519.PublicKey wrapper type.
type L2Account struct {
	pub ed25519.PublicKey
}

// NewL2Account wraps raw into an L2Account. raw must be exactly
// AccountSize bytes.
func NewL2Account(raw []byte) (L2Account, error) {
	if len(raw) != AccountSize {
		return L2Account{}, fmt.Errorf(
			"chanenc: L2Account must be %d bytes, got %d",
			AccountSize, len(raw))
	}
	pub := make(ed25519.PublicKey, AccountSize)
	copy(pub, raw)
	return L2Account{pub: pub}, nil
}

// Bytes returns the canonical 32-byte public key encoding.
func (a L2Account) Bytes() []byte {
	out := make([]byte, AccountSize)
	copy(out, a.pub)
	return out
}

// Equal reports whether two accounts hold the same public key.
func (a L2Account) Equal(b L2Account) bool {
	return a.pub.Equal(b.pub)
}

// IsZero reports whether the account holds no key material.
func (a L2Account) IsZero() bool {
	return len(a.pub) == 0
}

// L2Signature is an Ed25519 signature bound to a specific canonical
// byte encoding of the record it signs.
type L2Signature struct {
	sig [SignatureSize]byte
}

// NewL2Signature wraps raw into an L2Signature. raw must be exactly
// SignatureSize bytes.
func NewL2Signature(raw []byte) (L2Signature, error) {
	if len(raw) != SignatureSize {
		return L2Signature{}, fmt.Errorf(
			"chanenc: L2Signature must be %d bytes, got %d",
			SignatureSize, len(raw))
	}
	var sig L2Signature
	copy(sig.sig[:], raw)
	return sig, nil
}

// Bytes returns the raw 64-byte signature.
func (s L2Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, s.sig[:])
	return out
}

// L2Keypair is an Ed25519 signing key together with its public
// account, used only in tests and demo tooling to produce signatures
// over canonical encodings.
type L2Keypair struct {
	Account L2Account
	priv    ed25519.PrivateKey
}

// GenerateL2Keypair creates a fresh random Ed25519 keypair.
func GenerateL2Keypair() (L2Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return L2Keypair{}, fmt.Errorf("chanenc: generate keypair: %w", err)
	}
	acc, err := NewL2Account(pub)
	if err != nil {
		return L2Keypair{}, err
	}
	return L2Keypair{Account: acc, priv: priv}, nil
}

// Sign signs msg, the canonical byte encoding of some record, and
// returns the resulting L2Signature.
func (k L2Keypair) Sign(msg []byte) L2Signature {
	raw := ed25519.Sign(k.priv, msg)
	sig, _ := NewL2Signature(raw)
	return sig
}

// VerifyStrict reports whether sig is a valid Ed25519 signature by acc
// over msg. Verification is strict: malformed or malleable signatures
// (non-canonical S, small-order points) are rejected by
// ed25519.VerifyWithOptions in its default "FIPS 186-5" mode, which
// this function pins explicitly rather than relying on package
// defaults.
func VerifyStrict(acc L2Account, msg []byte, sig L2Signature) bool {
	if acc.IsZero() || len(acc.pub) != AccountSize {
		return false
	}
	ok, err := ed25519.VerifyWithOptions(acc.pub, msg, sig.sig[:], &ed25519.Options{
		Hash: 0,
	})
	return err == nil && ok
}
