package httpapi

import (
	"net/http"
	"strconv"
)

// HeaderIdentity reads the actor from headers set by the host platform's
// authenticating proxy. It trusts its input; never expose it without a proxy
// stripping client-supplied values.
type HeaderIdentity struct {
	UserHeader   string
	UserIDHeader string
}

func (h HeaderIdentity) CurrentUser(r *http.Request) (string, int64, bool) {
	username := r.Header.Get(h.UserHeader)
	userID, err := strconv.ParseInt(r.Header.Get(h.UserIDHeader), 10, 64)
	if username == "" || err != nil {
		return "", 0, false
	}
	return username, userID, true
}
