package service

import (
	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/database"
)

type Service struct {
	db *database.Database
}

func NewService(db *database.Database) *Service {
	return &Service{
		db: db,
	}
}

func (s *Service) CreateCollection(name string, options *collection.Options) (*collection.Collection, error) {
	if options == nil {
		options = &collection.Options{
			CreateIfMissing: true,
			ErrorIfExists:   true,
		}
	}
	return s.db.Collection(name, options)
}

func (s *Service) GetCollection(name string) (*collection.Collection, error) {
	return s.db.Collection(name, &collection.Options{})
}

func (s *Service) ListCollections() ([]*collection.Collection, error) {
	return s.db.Collections()
}

func (s *Service) DeleteCollection(name string) error {
	return s.db.DeleteCollection(name)
}

func (s *Service) CopyCollection(name string, input *CopyInput) (*collection.Collection, error) {
	to := collection.ToEnd
	if input.To != nil {
		to = *input.To
	}
	return s.db.CopyCollection(name, input.Target, input.From, to, input.Options)
}

func (s *Service) MapCollection(name string, input *MapInput) (*collection.Collection, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}

	fn, err := NewMapFunc(input.Pick, input.Set)
	if err != nil {
		return nil, err
	}

	return col.Map(fn, input.Target, input.Options)
}

func (s *Service) FilterCollection(name string, input *FilterInput) (*collection.Collection, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}

	return col.Filter(NewFilterFunc(input.Filter), input.Target, input.Options)
}

func (s *Service) ReduceCollection(name string, input *ReduceInput) (*collection.Collection, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}

	reducer, err := NewReducer(input.Op, input.Path, input.Initializer)
	if err != nil {
		return nil, err
	}

	return reducer.Reduce(col, input.Target, input.Options)
}

func (s *Service) RandomSubset(name string, input *RandomSubsetInput) (*collection.Collection, error) {
	col, err := s.GetCollection(name)
	if err != nil {
		return nil, err
	}

	return col.RandomSubset(input.N, input.Target, input.Options)
}
