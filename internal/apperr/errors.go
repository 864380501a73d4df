// Package apperr holds the sentinel errors shared by the annotation engine and its hosts.
package apperr

import "errors"

var (
	ErrLoadFailure   = errors.New("image source could not be loaded")
	ErrUninitialized = errors.New("surface not initialized")
	ErrSaveInFlight  = errors.New("save already in progress")
	ErrToolReserved  = errors.New("tool is reserved")
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
)
