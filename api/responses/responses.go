// Package responses renders the JSON envelopes every handler returns.
package responses

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	pkgerrors "github.com/gsindri/kaupa-skil-sub004/pkg/errors"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/types"
)

func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError renders err as an error envelope. Untyped errors become
// CodeInternal. 5xx responses are logged at error level, the rest as warnings.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	typed := pkgerrors.Resolve(err)
	status := pkgerrors.MetadataFor(typed.Code()).HTTPStatus

	if logg != nil {
		logged := err
		if logged == nil {
			logged = typed
		}
		ctx = logg.WithFields(ctx, pkgerrors.Dump(logged).Fields())
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", typed)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, status, types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: typed.PublicMessage(),
			Details: typed.PublicDetails(),
		},
		RequestID: logger.RequestID(ctx),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Int("status", status).Msg("response.encode_failed")
	}
}
