package httpx

import (
	"errors"
	"net/http"
)

// ErrUnavailable marks failures of a backing service the caller may retry.
var ErrUnavailable = errors.New("service unavailable")

// RespondError answers errors no route-level mapping claimed. An unavailable
// dependency gets a 503; anything else is treated as a store failure and
// answered with the supplied generic detail so internals never reach the
// caller.
func RespondError(w http.ResponseWriter, err error, detail string) {
	if errors.Is(err, ErrUnavailable) {
		Problem(w, http.StatusServiceUnavailable, "Service Unavailable", detail)
		return
	}
	Problem(w, http.StatusInternalServerError, "Internal Error", detail)
}
