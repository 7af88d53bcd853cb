package services

import "errors"

var (
	// ErrOrderNotFound is returned by update, delete and get for an unknown id
	ErrOrderNotFound = errors.New("order not found")

	// ErrMalformedPersistedState is returned by Load when the stored snapshot is not a valid order sequence
	ErrMalformedPersistedState = errors.New("malformed persisted order state")

	// ErrPersistence wraps a failed flush of the ledger snapshot
	ErrPersistence = errors.New("failed to persist orders")

	// ErrKeyNotFound is returned by a Store when the key has never been written
	ErrKeyNotFound = errors.New("key not found")
)
