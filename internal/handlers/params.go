package handlers

import (
	"net/http"
	"strconv"

	"github.com/diewo77/go-talent/internal/apperr"
)

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (uint, error) {
	n, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperr.Validation(name, "invalid_id")
	}
	return uint(n), nil
}

type reorderRequest struct {
	IDs []uint `json:"ids"`
}
