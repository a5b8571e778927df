package model

import "errors"

var (
	// ErrRecordStoreUnavailable is returned when the record store cannot be reached.
	ErrRecordStoreUnavailable = errors.New("record store unavailable")
	// ErrEmbeddingUnavailable is returned when the embedding capability fails or times out.
	ErrEmbeddingUnavailable = errors.New("embedding capability unavailable")
	// ErrGenerationUnavailable is returned when the generation capability fails or times out.
	ErrGenerationUnavailable = errors.New("generation capability unavailable")
	// ErrIndexUninitialized is returned when no index has been built yet.
	ErrIndexUninitialized = errors.New("index not initialized")

	ErrDuplicateName = errors.New("a face with this name already exists")
	ErrNotFound      = errors.New("not found")

	// ErrRateLimited and ErrUnavailable classify provider failures.
	ErrRateLimited = errors.New("rate limited")
	ErrUnavailable = errors.New("unavailable")

	ErrNoFace       = errors.New("no face detected in the image")
	ErrInvalidImage = errors.New("invalid image")
)
