package domain

import "errors"

var (
	// ErrCacheMiss indicates no cached entry was found.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest indicates a malformed gateway request.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrStreamTruncated indicates a stream closed without a terminal chunk.
	ErrStreamTruncated = errors.New("stream closed before completion")

	// ErrProviderNotConfigured indicates a provider is missing required configuration.
	ErrProviderNotConfigured = errors.New("provider not configured")
)
