package domain

import "errors"

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstream
)

// Error is a classified domain error. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrUserNotFound        = &Error{KindNotFound, "User not found"}
	ErrUserAlreadyExists   = &Error{KindValidation, "User already exists"}
	ErrEmailInUse          = &Error{KindValidation, "Email already in use"}
	ErrInvalidCredentials  = &Error{KindValidation, "Invalid credentials"}
	ErrIncorrectPassword   = &Error{KindUnauthorized, "Incorrect password"}
	ErrUnauthorized        = &Error{KindUnauthorized, "Not authenticated"}
	ErrTokenRevoked        = &Error{KindUnauthorized, "Token revoked"}
	ErrCustomerNotFound    = &Error{KindNotFound, "Customer not found"}
	ErrNotEnrolledReview   = &Error{KindForbidden, "Enroll to review"}
	ErrNotEnrolledCert     = &Error{KindForbidden, "Enroll to get certificate"}
	ErrQuizNotPassed       = &Error{KindValidation, "Pass the quiz first"}
	ErrCertificateNotFound = &Error{KindNotFound, "Certificate not found"}
	ErrDuplicateCode       = &Error{KindConflict, "Certificate code already taken"}
	ErrCertificateExists   = &Error{KindConflict, "Certificate already issued"}
	ErrAlreadyReviewed     = &Error{KindConflict, "You have already reviewed this course"}
	ErrInvalidFile         = &Error{KindValidation, "Invalid file type"}
	ErrFileTooLarge        = &Error{KindValidation, "File too large"}

	ErrAssistantNotConfigured = &Error{KindUpstream, "AI service configuration error. Please contact support."}
	ErrAssistantDenied        = &Error{KindForbidden, "AI service access denied. Please contact support."}
)

// ValidationError reports a missing or malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// KindOf walks the error chain and returns the first classification found.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return KindValidation
	}
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return KindUpstream
	}
	return KindInternal
}

// UpstreamError marks a failure of an external collaborator (storage, text generation).
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }
