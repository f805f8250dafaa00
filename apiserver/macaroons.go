package apiserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gopkg.in/macaroon-bakery.v2/bakery/checkers"
	macaroon "gopkg.in/macaroon.v2"

	"github.com/perun-network/icp-adjudicator-go/chantime"
)

// adminGate mints and verifies the single bearer macaroon that guards
// deposit_mocked, the same capability-token idea lnd's macaroons
// package applies to its whole RPC surface, narrowed here to the one
// operation a production deployment should never leave open
// (spec.md §C.5).
type adminGate struct {
	rootKey []byte
	checker *checkers.Checker
	clock   chantime.Clock
}

func newAdminGate(clock chantime.Clock) (*adminGate, error) {
	rootKey := make([]byte, 32)
	if _, err := rand.Read(rootKey); err != nil {
		return nil, fmt.Errorf("apiserver: generate macaroon root key: %w", err)
	}
	return &adminGate{
		rootKey: rootKey,
		checker: checkers.New(nil),
		clock:   clock,
	}, nil
}

// Mint returns a hex-encoded macaroon valid for ttl, scoped to the
// admin operations this gate protects.
func (g *adminGate) Mint(ttl time.Duration) (string, error) {
	m, err := macaroon.New(g.rootKey, []byte("admin"), "adjudicator", macaroon.V2)
	if err != nil {
		return "", fmt.Errorf("apiserver: mint macaroon: %w", err)
	}
	expiry := checkers.TimeBeforeCaveat(g.clock.Now().Add(ttl))
	if err := m.AddFirstPartyCaveat([]byte(expiry.Condition)); err != nil {
		return "", fmt.Errorf("apiserver: add caveat: %w", err)
	}
	raw, err := m.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("apiserver: marshal macaroon: %w", err)
	}
	return hex.EncodeToString(raw), nil
}

// Verify checks the bearer macaroon on r. A missing, malformed, or
// expired token is rejected with an error.
func (g *adminGate) Verify(r *http.Request) error {
	token := bearerToken(r)
	if token == "" {
		return fmt.Errorf("apiserver: missing admin macaroon")
	}
	raw, err := hex.DecodeString(token)
	if err != nil {
		return fmt.Errorf("apiserver: malformed admin macaroon")
	}
	m := &macaroon.Macaroon{}
	if err := m.UnmarshalBinary(raw); err != nil {
		return fmt.Errorf("apiserver: malformed admin macaroon: %w", err)
	}
	check := func(caveat string) error {
		return g.checker.CheckFirstPartyCaveat(context.Background(), caveat)
	}
	if err := m.Verify(g.rootKey, check, nil); err != nil {
		return fmt.Errorf("apiserver: admin macaroon rejected: %w", err)
	}
	return nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

// requireAdmin wraps handler, rejecting requests whose bearer token
// doesn't verify against g.
func requireAdmin(g *adminGate, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := g.Verify(r); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(errorDTO{Error: err.Error()})
			return
		}
		handler(w, r)
	}
}
