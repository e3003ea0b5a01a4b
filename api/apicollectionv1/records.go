package apicollectionv1

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/record"
)

// appendRecords reads a stream of JSON values (usually one per line) and
// appends them in order. Values read before a malformed one are kept.
func appendRecords(ctx context.Context, w http.ResponseWriter, r *http.Request) (*CollectionResponse, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	decoder := jsontext.NewDecoder(r.Body)

	appended := 0
	for {
		raw, err := decoder.ReadValue()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrInvalidBody, appended, err.Error())
		}

		value, err := record.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", ErrInvalidBody, appended, err.Error())
		}

		err = col.Append(value)
		if err != nil {
			return nil, err
		}
		appended++
	}

	if appended == 0 {
		w.WriteHeader(http.StatusNoContent)
		return nil, nil
	}

	w.WriteHeader(http.StatusCreated)
	return newCollectionResponse(col), nil
}

type listRequest struct {
	From int  `json:"from"`
	To   *int `json:"to"`
}

func listRecords(ctx context.Context, r *http.Request) ([]record.Value, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	input := &listRequest{}
	err = decodeBody(r, input)
	if err != nil {
		return nil, err
	}

	to := collection.ToEnd
	if input.To != nil {
		to = *input.To
	}

	return col.Slice(input.From, to)
}

type getRequest struct {
	Index *int `json:"index"`
}

func getRecord(ctx context.Context, input *getRequest) (*record.Value, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	if input.Index == nil {
		return nil, fmt.Errorf("%w: index is required", ErrInvalidBody)
	}

	value, err := col.Get(*input.Index)
	if err != nil {
		return nil, err
	}

	return &value, nil
}

type setRequest struct {
	Index *int         `json:"index"`
	Value record.Value `json:"value"`
}

func setRecord(ctx context.Context, input *setRequest) (*record.Value, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	if input.Index == nil {
		return nil, fmt.Errorf("%w: index is required", ErrInvalidBody)
	}

	err = col.Set(*input.Index, input.Value)
	if err != nil {
		return nil, err
	}

	return &input.Value, nil
}

type deleteRequest struct {
	Index *int `json:"index"`
	All   bool `json:"all"`
}

func deleteRecords(ctx context.Context, input *deleteRequest) (*CollectionResponse, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	switch {
	case input.All:
		err = col.DeleteAll()
	case input.Index != nil:
		err = col.Delete(*input.Index)
	default:
		err = fmt.Errorf("%w: either index or all is required", ErrInvalidBody)
	}
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}
