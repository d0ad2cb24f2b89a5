package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/config"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/databases"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/storage"
	"github.com/pito-bataan/PGB-EVENTSCHEDULER-BACKEND/workflow"
)

var validate = validator.New()

// errBadRequest marks malformed input
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// decodeJSON reads a JSON body into v and validates its struct tags
func decodeJSON(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return badRequest("failed to read request body")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return badRequest("failed to decode request body: %v", err)
	}
	return validateStruct(v)
}

func validateStruct(v interface{}) error {
	if err := validate.Struct(v); err != nil {
		return badRequest("%v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}

// statusFor maps domain and storage errors onto http statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrUnknownDepartment),
		errors.Is(err, workflow.ErrUnknownRequirement),
		errors.Is(err, workflow.ErrUnknownReportSlot),
		errors.Is(err, workflow.ErrNotEditable),
		errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, storage.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrForbidden), errors.Is(err, workflow.ErrNotReleased):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, databases.ErrNotFound), errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, databases.ErrVersionConflict), errors.Is(err, databases.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, storage.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes the error envelope. Unexpected errors are
// reported with message only so storage details stay server side.
func writeError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		zap.S().Errorw(message, "error", err)
		config.ErrorStatus(message, status, w, nil)
		return
	}
	if errors.Is(err, databases.ErrDuplicate) {
		config.ErrorStatus(message, status, w, nil)
		return
	}
	config.ErrorStatus(message, status, w, err)
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(mux.Vars(r)[name])
	if err != nil {
		return primitive.NilObjectID, badRequest("invalid %s", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
