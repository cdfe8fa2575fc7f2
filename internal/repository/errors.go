package repository

import "errors"

var (
	// ErrImageNotFound indicates the image could not be retrieved
	ErrImageNotFound = errors.New("image not found")

	// ErrSessionNotFound indicates no session exists for the ID
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates a session with the same ID is already stored
	ErrSessionExists = errors.New("session already exists")

	// ErrSourceUnavailable indicates the requested image source is not configured
	ErrSourceUnavailable = errors.New("image source unavailable")
)
