package request

import (
	"errors"
	"log/slog"
	"net/http"

	"qanda-service/internal/auth"
	"qanda-service/internal/http-server/validate"
	"qanda-service/pkg/response"
	"qanda-service/pkg/sl"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

var v = validate.New()

// Decode reads the JSON body into dst and validates it. On failure it writes the 400 reply
// and returns false.
func Decode(log *slog.Logger, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return false
	}

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Warn("invalid request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verrs))
			return false
		}

		log.Error("failed to validate request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.INVALID_INPUT), "invalid request"))
		return false
	}

	return true
}

// Identity returns the authenticated caller, writing a 401 when there is none.
func Identity(log *slog.Logger, w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		log.Warn("missing identity")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "not authenticated"))
		return auth.Identity{}, false
	}

	return id, true
}

// Fail writes the reply for err. Unexpected errors are logged as errors, the rest as warnings.
func Fail(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error, msg string) {
	if response.Fail(w, r, err, msg) >= http.StatusInternalServerError {
		log.Error(msg, sl.Err(err))
		return
	}

	log.Warn(msg, sl.Err(err))
}
