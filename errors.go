package goSession

import "errors"

var (
	// ErrSessionNotFound is returned when the store has no record for the session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionRetrieval is returned when the store fetch itself fails.
	ErrSessionRetrieval = errors.New("session retrieval failed")
	// ErrSessionClear is returned when deleting an expired session or logging its expiry fails.
	ErrSessionClear = errors.New("session clear failed")
	// ErrSessionRefresh is returned when persisting a refreshed session or logging the refresh fails.
	ErrSessionRefresh = errors.New("session refresh failed")
	// ErrTokenInvalid is returned by the access-token entry points when the token cannot be verified.
	ErrTokenInvalid = errors.New("invalid session token")
	// ErrTokenManagerMissing is returned by the access-token entry points when no token manager is configured.
	ErrTokenManagerMissing = errors.New("session token manager not configured")
	// ErrHandlerNotReady is returned when a Handler is used before Build.
	ErrHandlerNotReady = errors.New("handler not initialized")
)
