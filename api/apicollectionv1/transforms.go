package apicollectionv1

import (
	"context"

	"github.com/fulldump/box"

	"github.com/fulldump/pipelinedb/service"
)

func copyCollection(ctx context.Context, input *service.CopyInput) (*CollectionResponse, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	col, err := s.CopyCollection(collectionName, input)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}

func mapCollection(ctx context.Context, input *service.MapInput) (*CollectionResponse, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	col, err := s.MapCollection(collectionName, input)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}

func filterCollection(ctx context.Context, input *service.FilterInput) (*CollectionResponse, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	col, err := s.FilterCollection(collectionName, input)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}

func reduceCollection(ctx context.Context, input *service.ReduceInput) (*CollectionResponse, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	col, err := s.ReduceCollection(collectionName, input)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}

func randomSubset(ctx context.Context, input *service.RandomSubsetInput) (*CollectionResponse, error) {

	s := GetServicer(ctx)
	collectionName := box.GetUrlParameter(ctx, "collectionName")

	col, err := s.RandomSubset(collectionName, input)
	if err != nil {
		return nil, err
	}

	return newCollectionResponse(col), nil
}
