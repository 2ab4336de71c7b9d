package loco

import (
	"fmt"
	"net/http"

	"github.com/konstantinfoerster/loco-importer-go/internal/web"
)

// ExportError is a failed export download of one filter.
type ExportError struct {
	Filter string
	Err    error
}

func (e *ExportError) Error() string {
	if e.KeyRejected() {
		return fmt.Sprintf("export of %s was rejected, check the configured Loco key: %v", e.Filter, e.Err)
	}

	return fmt.Sprintf("export of %s failed: %v", e.Filter, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// KeyRejected reports whether Loco refused the API key.
func (e *ExportError) KeyRejected() bool {
	return web.IsStatusCode(e.Err, http.StatusUnauthorized, http.StatusForbidden)
}
