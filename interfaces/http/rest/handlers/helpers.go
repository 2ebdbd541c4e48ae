package handlers

import (
	"net/http"
	"strconv"

	"numtree-backend/pkg/auth"
	"numtree-backend/pkg/common"
	pkgerrors "numtree-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// pathID parses a positive integer URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.NewValidationError("Invalid " + name).WithDetails(map[string]interface{}{name: raw})
	}
	return id, nil
}

// currentUser returns the user placed in the context by the Authenticate middleware
func currentUser(r *http.Request) (*auth.UserContext, error) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		return nil, pkgerrors.NewUnauthorizedError("Unauthorized")
	}
	return user, nil
}

// respond writes a JSON body and logs encoding failures
func respond(w http.ResponseWriter, status int, body interface{}, logger *zap.Logger) {
	if err := common.RespondJSON(w, status, body); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}
