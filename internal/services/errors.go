package services

import "errors"

var (
	ErrUnknown             = errors.New("[service]: unknown error")
	ErrInvalidURL          = errors.New("[service]: invalid url")
	ErrInvalidFormat       = errors.New("[service]: invalid code format")
	ErrCodeConflict        = errors.New("[service]: code already exists")
	ErrAllocationExhausted = errors.New("[service]: unique code allocation exhausted")
	ErrNotFoundOrForbidden = errors.New("[service]: link not found or not owned")
	ErrNotFound            = errors.New("[service]: link not found")
)
