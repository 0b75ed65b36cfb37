package service

import "errors"

var (
	// ErrInvalidDocument is returned when a document to save has no projects list.
	ErrInvalidDocument = errors.New("invalid site document, projects must be a list")
	// ErrWriteFailed is returned when the store could not persist the document.
	ErrWriteFailed = errors.New("failed to write site document")
	// ErrMissingAnalysisInput is returned when emotion, material or nature is blank.
	ErrMissingAnalysisInput = errors.New("tüm alanlar doldurulmalıdır")
	// ErrMissingAppointmentInput is returned when name or phone is blank.
	ErrMissingAppointmentInput = errors.New("ad ve telefon zorunludur")
	// ErrInvalidPassword is returned by Login for a wrong shared secret.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidToken is returned for malformed or forged tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned for a well formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
)
