package collection

import "errors"

var (
	ErrInvalidName       = errors.New("invalid collection name")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrEmptyReduction    = errors.New("reduce of empty collection with no initializer")
	ErrCollectionDropped = errors.New("collection has been dropped")
	ErrSameCollection    = errors.New("source and destination are the same collection")
)
