package handlers

import "errors"

var (
	ErrMessageNotFound = errors.New("message not found")
	ErrForbidden       = errors.New("forbidden")
	ErrPersistence     = errors.New("failed to persist message")
)
