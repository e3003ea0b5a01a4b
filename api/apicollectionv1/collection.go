package apicollectionv1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/pipelinedb/collection"
)

var ErrInvalidBody = errors.New("invalid body")

type CollectionResponse struct {
	Name      string `json:"name"`
	Total     int    `json:"total"`
	LastIndex uint64 `json:"last_index"`
}

func newCollectionResponse(col *collection.Collection) *CollectionResponse {
	return &CollectionResponse{
		Name:      col.Name(),
		Total:     col.Len(),
		LastIndex: col.LastIndex(),
	}
}

// urlCollection resolves the existing collection named in the url.
func urlCollection(ctx context.Context) (*collection.Collection, error) {
	s := GetServicer(ctx)
	return s.GetCollection(box.GetUrlParameter(ctx, "collectionName"))
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBody, err.Error())
	}
	return nil
}
