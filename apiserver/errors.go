package apiserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

// errBadRequestBody is returned for malformed or undecodable JSON
// request bodies, distinct from the chantypes error taxonomy.
var errBadRequestBody = fmt.Errorf("%w: malformed request body", chantypes.ErrInvalidInput)

// statusFor maps the error taxonomy in spec.md §7 onto HTTP status
// codes, the way a JSON-over-HTTP boundary is expected to surface
// typed errors without a second out-of-band channel.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chantypes.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, chantypes.ErrNotFinalized):
		return http.StatusConflict
	case errors.Is(err, chantypes.ErrAlreadyConcluded):
		return http.StatusConflict
	case errors.Is(err, chantypes.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, chantypes.ErrInsufficientFunding):
		return http.StatusConflict
	case errors.Is(err, chantypes.ErrOutdatedState):
		return http.StatusConflict
	case errors.Is(err, chantypes.ErrLedgerError):
		return http.StatusBadGateway
	default:
		var rcvErr *chantypes.ReceiverError
		if errors.As(err, &rcvErr) {
			switch rcvErr.Kind {
			case chantypes.ErrDuplicateTransaction:
				return http.StatusConflict
			case chantypes.ErrTransactionType, chantypes.ErrRecipient:
				return http.StatusBadRequest
			default:
				return http.StatusBadGateway
			}
		}
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(errorDTO{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
