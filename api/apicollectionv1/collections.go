package apicollectionv1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulldump/box"

	"github.com/fulldump/pipelinedb/collection"
)

func listCollections(ctx context.Context) ([]*CollectionResponse, error) {

	s := GetServicer(ctx)

	collections, err := s.ListCollections()
	if err != nil {
		return nil, err
	}

	result := make([]*CollectionResponse, 0, len(collections))
	for _, col := range collections {
		result = append(result, newCollectionResponse(col))
	}

	return result, nil
}

type createCollectionRequest struct {
	Name          string `json:"name"`
	ErrorIfExists *bool  `json:"errorIfExists"`
}

func createCollection(ctx context.Context, w http.ResponseWriter, input *createCollectionRequest) (*CollectionResponse, error) {

	s := GetServicer(ctx)

	options := &collection.Options{
		CreateIfMissing: true,
		ErrorIfExists:   true,
	}
	if input.ErrorIfExists != nil {
		options.ErrorIfExists = *input.ErrorIfExists
	}

	col, err := s.CreateCollection(input.Name, options)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	w.WriteHeader(http.StatusCreated)
	return newCollectionResponse(col), nil
}

func getCollection(ctx context.Context) (*CollectionResponse, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}

func dropCollection(ctx context.Context, w http.ResponseWriter) error {

	s := GetServicer(ctx)

	collectionName := box.GetUrlParameter(ctx, "collectionName")

	return s.DeleteCollection(collectionName)
}

func refreshCollection(ctx context.Context) (*CollectionResponse, error) {

	col, err := urlCollection(ctx)
	if err != nil {
		return nil, err
	}

	err = col.Refresh()
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}
