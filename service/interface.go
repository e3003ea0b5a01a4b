package service

import (
	"github.com/fulldump/pipelinedb/collection"
	"github.com/fulldump/pipelinedb/database"
)

var ErrorCollectionNotFound = database.ErrCollectionNotFound
var ErrorCollectionAlreadyExists = database.ErrCollectionAlreadyExists

type Servicer interface {
	CreateCollection(name string, options *collection.Options) (*collection.Collection, error)
	GetCollection(name string) (*collection.Collection, error)
	ListCollections() ([]*collection.Collection, error)
	DeleteCollection(name string) error
	CopyCollection(name string, input *CopyInput) (*collection.Collection, error)
	MapCollection(name string, input *MapInput) (*collection.Collection, error)
	FilterCollection(name string, input *FilterInput) (*collection.Collection, error)
	ReduceCollection(name string, input *ReduceInput) (*collection.Collection, error)
	RandomSubset(name string, input *RandomSubsetInput) (*collection.Collection, error)
}

// Destination tells a transformation where to write. Empty Target means in
// place.
type Destination struct {
	Target  string              `json:"target"`
	Options *collection.Options `json:"options"`
}

type CopyInput struct {
	Destination
	From int  `json:"from"`
	To   *int `json:"to"`
}

type MapInput struct {
	Destination
	Pick string         `json:"pick"`
	Set  map[string]any `json:"set"`
}

type FilterInput struct {
	Destination
	Filter map[string]any `json:"filter"`
}

type ReduceInput struct {
	Destination
	Op          string `json:"op"`
	Path        string `json:"path"`
	Initializer any    `json:"initializer"`
}

type RandomSubsetInput struct {
	Destination
	N int `json:"n"`
}
