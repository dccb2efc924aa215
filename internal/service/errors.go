package service

import (
	"errors"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/validate"
)

var publicErrors = []error{
	ErrBadCredentials, ErrRegistered, ErrAdminSignup, ErrUnknownClub,
	ErrMemberNotFound, ErrLogNotFound,
	ErrNotImage, ErrTooLarge, ErrBadBase64,
}

// Public reports whether err's message is meant for the user. Anything else
// is an internal failure and is logged instead of shown.
func Public(err error) bool {
	if validate.IsValidation(err) {
		return true
	}
	for _, pe := range publicErrors {
		if errors.Is(err, pe) {
			return true
		}
	}
	return false
}
