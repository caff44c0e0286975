package services

import "errors"

var (
	// ErrUnsupportedExtension is returned for an upload whose extension is not allowed
	ErrUnsupportedExtension = errors.New("file extension not allowed")

	// ErrUploadTooLarge is returned when an upload exceeds the configured size
	ErrUploadTooLarge = errors.New("upload exceeds maximum size")

	// ErrNoResult is returned when a chart or export needs an analysis that has not run
	ErrNoResult = errors.New("analysis has not been run")

	// ErrInvalidInput is returned for request values the domain packages reject
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFormat is returned for an unknown export format
	ErrInvalidFormat = errors.New("invalid export format")
)
