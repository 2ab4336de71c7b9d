package web

import (
	"net/url"
)

var secretParams = []string{"key", "token"}

// redact hides credentials passed as query parameters so urls can be logged and
// returned in errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "xxx")
			changed = true
		}
	}
	if !changed {
		return rawURL
	}
	u.RawQuery = q.Encode()

	return u.String()
}
