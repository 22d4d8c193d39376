package api

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/arnac-io/safekeeper/pkg/core"
)

type HTTPError struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

func (e HTTPError) Error() string {
	return e.Message
}

func BadRequest(msg string) HTTPError {
	return HTTPError{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

var statusBySentinel = []struct {
	err  error
	code int
}{
	{core.ErrNotAnOwner, http.StatusForbidden},
	{core.ErrOnlyWallet, http.StatusForbidden},
	{core.ErrOwnerNotFound, http.StatusNotFound},
	{core.ErrTransactionNotFound, http.StatusNotFound},
	{core.ErrBalanceNotFound, http.StatusNotFound},
	{core.ErrTokenNotTracked, http.StatusNotFound},
	{core.ErrInvalidState, http.StatusConflict},
	{core.ErrInvalidQuorum, http.StatusConflict},
	{core.ErrAddressAlreadyExists, http.StatusConflict},
	{core.ErrNotConfirmed, http.StatusConflict},
	{core.ErrAlreadyInstalled, http.StatusConflict},
	{core.ErrNotInstalled, http.StatusConflict},
	{core.ErrMalformedParams, http.StatusBadRequest},
	{core.ErrInvalidTarget, http.StatusBadRequest},
	{core.ErrInvalidAmount, http.StatusBadRequest},
}

// toHTTPError maps domain errors to a status code. Unknown errors are internal.
func toHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return HTTPError{Code: s.code, Message: err.Error()}
		}
	}
	return HTTPError{Code: http.StatusInternalServerError, Message: err.Error()}
}
