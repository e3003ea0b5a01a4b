package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/pipelinedb/api/apicollectionv1"
	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/database"
	"github.com/fulldump/pipelinedb/service"
)

var ErrUnavailable = errors.New("temporary unavailable")

type PrettyError struct {
	Message     string `json:"message"`
	Description string `json:"description"`
}

func (p PrettyError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"error": struct {
			Message     string `json:"message"`
			Description string `json:"description"`
		}{
			p.Message,
			p.Description,
		},
	})
}

func (p PrettyError) MarshalTo(w io.Writer) error {
	return json.NewEncoder(w).Encode(p)
}

func InterceptorUnavailable(db *database.Database) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {

			status := db.GetStatus()
			if status != database.StatusOperating {
				box.SetError(ctx, fmt.Errorf("%w: %s", ErrUnavailable, status))
				return
			}
			next(ctx)
		}
	}
}

// describe returns the status code and a human description for err.
func describe(ctx context.Context, err error) (int, string) {

	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "user is not authenticated"
	case errors.Is(err, box.ErrResourceNotFound):
		return http.StatusNotFound, fmt.Sprintf("resource '%s' not found", box.GetRequest(ctx).URL.String())
	case errors.Is(err, box.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, fmt.Sprintf("method '%s' not allowed", box.GetRequest(ctx).Method)
	case errors.Is(err, ErrUnavailable), errors.Is(err, database.ErrDatabaseClosed):
		return http.StatusServiceUnavailable, "database is not operating, try again later"
	case errors.Is(err, service.ErrorCollectionNotFound), errors.Is(err, collection.ErrCollectionDropped):
		return http.StatusNotFound, "collection does not exist"
	case errors.Is(err, service.ErrorCollectionAlreadyExists):
		return http.StatusConflict, "collection already exists"
	case errors.Is(err, collection.ErrInvalidName):
		return http.StatusBadRequest, fmt.Sprintf("collection names must not be empty nor contain '%s'", collection.Separator)
	case errors.Is(err, collection.ErrIndexOutOfRange):
		return http.StatusBadRequest, "index out of range"
	case errors.Is(err, collection.ErrEmptyReduction):
		return http.StatusBadRequest, "cannot reduce an empty collection without initializer"
	case errors.Is(err, collection.ErrSameCollection):
		return http.StatusBadRequest, "source and target are the same collection"
	case errors.Is(err, service.ErrInvalidExpression):
		return http.StatusBadRequest, "invalid expression"
	case errors.Is(err, apicollectionv1.ErrInvalidBody), errors.Is(err, io.EOF):
		return http.StatusBadRequest, "invalid body"
	case errors.As(err, &syntaxError), errors.As(err, &typeError):
		return http.StatusBadRequest, "Malformed JSON"
	}

	return http.StatusInternalServerError, "Unexpected error"
}

func PrettyErrorInterceptor(next box.H) box.H {
	return func(ctx context.Context) {

		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}

		status, description := describe(ctx, err)

		w := box.GetResponse(ctx)
		w.WriteHeader(status)
		PrettyError{
			Message:     err.Error(),
			Description: description,
		}.MarshalTo(w)
	}
}
