package errors

import "net/http"

var (
	ErrPostNotFound = New(
		"POST_NOT_FOUND",
		"Post not found",
		http.StatusNotFound,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Map session not found or already closed",
		http.StatusNotFound,
	)

	ErrSessionClosed = New(
		"SESSION_CLOSED",
		"Map session has been closed",
		http.StatusGone,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidRadius = New(
		"INVALID_RADIUS",
		"Invalid radius value",
		http.StatusBadRequest,
	)

	ErrInvalidCategory = New(
		"INVALID_CATEGORY",
		"Unknown post category",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	// StoreFetchFailure: read failed and no retained snapshot was available.
	ErrStoreFetchFailed = New(
		"STORE_FETCH_FAILED",
		"Failed to load posts from the store",
		http.StatusServiceUnavailable,
	)

	// StoreWriteFailure: the approval increment did not reach the store.
	// Displayed counts stay unchanged.
	ErrStoreWriteFailed = New(
		"STORE_WRITE_FAILED",
		"Failed to record the approval",
		http.StatusServiceUnavailable,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
