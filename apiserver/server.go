package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/btcsuite/btclog"

	"github.com/perun-network/icp-adjudicator-go/adjudicator"
	"github.com/perun-network/icp-adjudicator-go/chantime"
	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

var log = btclog.Disabled

// UseLogger sets the logger used by this package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

// Server is the HTTP+JSON front end over an *adjudicator.Adjudicator.
type Server struct {
	core *adjudicator.Adjudicator
	gate *adminGate
	mux  *http.ServeMux
}

// New builds a Server. clock is used only to time-bound minted
// macaroons, not the adjudicator's own notion of now.
func New(core *adjudicator.Adjudicator, clock chantime.Clock) (*Server, error) {
	gate, err := newAdminGate(clock)
	if err != nil {
		return nil, err
	}
	s := &Server{core: core, gate: gate, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// AdminToken mints a fresh bearer token for the admin-gated endpoints,
// for operators to hand to cmd/adjudicatorctl.
func (s *Server) AdminToken(ttl time.Duration) (string, error) {
	return s.gate.Mint(ttl)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/v1/query_holdings", s.handleQueryHoldings)
	s.mux.HandleFunc("/v1/query_state", s.handleQueryState)
	s.mux.HandleFunc("/v1/query_events", s.handleQueryEvents)
	s.mux.HandleFunc("/v1/deposit_mocked", requireAdmin(s.gate, s.handleDepositMocked))
	s.mux.HandleFunc("/v1/transaction_notification", s.handleTransactionNotification)
	s.mux.HandleFunc("/v1/deposit", s.handleDeposit)
	s.mux.HandleFunc("/v1/conclude", s.handleConclude)
	s.mux.HandleFunc("/v1/dispute", s.handleDispute)
	s.mux.HandleFunc("/v1/withdraw", s.handleWithdraw)
	s.mux.HandleFunc("/v1/stream_events", s.handleStreamEvents)
	s.mux.Handle("/metrics", promhttp.Handler())
}

func decodeBody(r *http.Request, v interface{}) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}

func (s *Server) handleQueryHoldings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req fundingDTO
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	funding, err := req.toFunding()
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := s.core.QueryHoldings(funding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, fromAmount(amount))
}

func (s *Server) handleQueryState(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	id, err := decodeChannelId(channel)
	if err != nil {
		writeError(w, err)
		return
	}
	rs, ok, err := s.core.QueryState(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, nil)
		return
	}
	writeJSON(w, fromRegisteredState(rs))
}

func (s *Server) handleQueryEvents(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	id, err := decodeChannelId(channel)
	if err != nil {
		writeError(w, err)
		return
	}
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, errBadRequestBody)
			return
		}
		since = parsed
	}
	events, err := s.core.QueryEvents(id, since)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]eventDTO, len(events))
	for i, ev := range events {
		out[i] = fromEvent(ev)
	}
	writeJSON(w, out)
}

func (s *Server) handleDepositMocked(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Funding fundingDTO `json:"funding"`
		Amount  string     `json:"amount"`
	}
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	funding, err := req.Funding.toFunding()
	if err != nil {
		writeError(w, err)
		return
	}
	var amount chantypes.Amount
	if err := amount.UnmarshalText([]byte(req.Amount)); err != nil {
		writeError(w, fmt.Errorf("%w: %v", chantypes.ErrInvalidInput, err))
		return
	}
	if err := s.core.DepositMocked(funding, amount); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct{}{})
}

func (s *Server) handleTransactionNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BlockHeight uint64 `json:"block_height"`
	}
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	amount, err := s.core.TransactionNotification(r.Context(), req.BlockHeight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, fromAmount(amount))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req fundingDTO
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	funding, err := req.toFunding()
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := s.core.Deposit(funding)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, fromAmount(amount))
}

func (s *Server) handleConclude(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Params paramsDTO           `json:"params"`
		Signed fullySignedStateDTO `json:"signed"`
	}
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	params, err := req.Params.toParams()
	if err != nil {
		writeError(w, err)
		return
	}
	signed, err := req.Signed.toFullySignedState()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.core.Conclude(params, signed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct{}{})
}

func (s *Server) handleDispute(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Params paramsDTO           `json:"params"`
		Signed fullySignedStateDTO `json:"signed"`
	}
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	params, err := req.Params.toParams()
	if err != nil {
		writeError(w, err)
		return
	}
	signed, err := req.Signed.toFullySignedState()
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.core.Dispute(params, signed); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, struct{}{})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequestDTO
	if !decodeBody(r, &req) {
		writeError(w, errBadRequestBody)
		return
	}
	wr, err := req.toWithdrawalRequest()
	if err != nil {
		writeError(w, err)
		return
	}
	amount, err := s.core.Withdraw(r.Context(), wr)
	if err != nil {
		writeError(w, err)
		return
	}
	// A zero amount is still a successful withdrawal response, never an
	// omitted body (SPEC_FULL.md §D).
	writeJSON(w, fromAmount(amount))
}

