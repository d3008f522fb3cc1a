package httpx

import (
	"errors"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Mart1n-S/WatchListy-sub001/internal/apperr"
)

type errorBody struct {
	Code        string            `json:"code"`
	Message     string            `json:"message"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// Respond writes v as JSON with the given status. A nil v writes only the
// status line.
func Respond(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Decode reads the request body into v, limited to 1 MiB.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20)).Decode(v)
}

// Error translates err through the apperr taxonomy. Internal errors are
// logged with their cause and returned as a generic code; everything else is
// surfaced verbatim so clients can resolve the code to localized copy.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	ErrorStatus(w, log, err, 0)
}

// ErrorStatus is Error with a status override (the auth endpoints report
// validation failures as 422 instead of 400).
func ErrorStatus(w http.ResponseWriter, log *zap.Logger, err error, status int) {
	ae := apperr.As(err)
	if status == 0 {
		status = ae.Status()
	}
	body := errorBody{Code: ae.Code, Message: ae.Message, FieldErrors: ae.FieldErrors}
	if body.Message == "" {
		body.Message = defaultMessage(ae.Code)
	}
	if ae.Kind == apperr.KindInternal {
		log.Error("internal error", zap.Error(errors.Unwrap(ae)), zap.Stack("stack"))
		body = errorBody{Code: apperr.CodeInternal, Message: defaultMessage(apperr.CodeInternal)}
	}
	if ae.Kind == apperr.KindUpstream {
		log.Warn("upstream failure", zap.Error(errors.Unwrap(ae)))
	}
	Respond(w, status, errorEnvelope{Error: body})
}

func defaultMessage(code string) string {
	switch code {
	case apperr.CodeValidation:
		return "one or more fields are invalid"
	case apperr.CodeInvalidCreds:
		return "email or password is incorrect"
	case apperr.CodeUnauthorized:
		return "authentication required"
	case apperr.CodePseudoTaken:
		return "this pseudo is already in use"
	case apperr.CodeEmailTaken:
		return "this email is already in use"
	case apperr.CodeReviewExists:
		return "you already reviewed this title"
	case apperr.CodeSelfFollow:
		return "you cannot follow yourself"
	case apperr.CodeUserNotFound:
		return "user not found"
	case apperr.CodeResetTokenInvalid:
		return "reset link is invalid or expired"
	case apperr.CodeUpstreamFailure:
		return "catalog service is unavailable"
	default:
		return "something went wrong"
	}
}
