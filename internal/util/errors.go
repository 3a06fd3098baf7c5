package util

import "errors"

var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrUnauthorized         = errors.New("could not validate credentials")
	ErrInvalidToken         = errors.New("invalid token")
	ErrInvalidCredentials   = errors.New("incorrect username or password")
	ErrNotFound             = errors.New("resource not found")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrPasswordMismatch     = errors.New("new password and confirmation do not match")
	ErrValidation           = errors.New("validation error")
	ErrForbidden            = errors.New("permission denied")
	ErrDuplicateCertificate = errors.New("certificate name already exists")
	ErrDuplicateSourceURL   = errors.New("learning content with this source url already exists")
	ErrDuplicatePlan        = errors.New("subscription plan name already exists")
	ErrAttemptFinished      = errors.New("attempt already finished")
	ErrContentNotReady      = errors.New("content has not finished processing")
)
