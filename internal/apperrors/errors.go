package apperrors

import (
	"errors"
)

var (
	ErrItemNotFound = errors.New("item is not registered")
	ErrEmptyUID     = errors.New("scan event carries an empty uid")
)
