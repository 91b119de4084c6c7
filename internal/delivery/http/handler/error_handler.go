package handler

import (
	"errors"
	"net/http"

	"medical-scheduling/internal/usecase"
	"medical-scheduling/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps a usecase error onto a status code. fallback is the
// message for anything outside the error taxonomy.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		response.Fail(w, http.StatusBadRequest, response.CodeValidation, err.Error())
	case errors.Is(err, usecase.ErrNotFound):
		response.Fail(w, http.StatusNotFound, response.CodeNotFound, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, usecase.ErrSlotUnavailable):
		response.Fail(w, http.StatusConflict, response.CodeSlotUnavailable, err.Error())
	case errors.Is(err, usecase.ErrInvalidTransition):
		response.Fail(w, http.StatusBadRequest, response.CodeInvalidTransition, err.Error())
	case errors.Is(err, usecase.ErrConflict):
		response.Fail(w, http.StatusConflict, response.CodeConflict, err.Error())
	case errors.Is(err, usecase.ErrTransient):
		response.ServiceUnavailable(w, "")
	default:
		response.Fail(w, http.StatusInternalServerError, response.CodeInternal, fallback)
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	return id, err == nil
}
