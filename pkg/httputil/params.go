package httputil

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pulsmedic/pulsmedic-backend/pkg/errors"
)

// IDParam returns the URL parameter name as a UUID string. A malformed ID
// cannot match any row, so it is reported as the resource not being found.
func IDParam(r *http.Request, name, resource string) (string, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return "", errors.NotFound(resource)
	}
	return id.String(), nil
}

// QueryBool reads a boolean query parameter, false when absent or malformed
func QueryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
