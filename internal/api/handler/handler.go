package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Rrens/collabhub/internal/api/middleware"
	"github.com/Rrens/collabhub/internal/api/response"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// decodeAndValidate reads a JSON body into dst and validates it. On
// failure the response has already been written.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		response.ValidationError(w, err)
		return false
	}
	return true
}

// requireUser returns the authenticated user id or writes a 401
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
	}
	return userID, ok
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
