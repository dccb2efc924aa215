package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required,oneof=murid guru admin"`
}

func TestStructReportsJSONNames(t *testing.T) {
	err := Struct(payload{Email: "not-an-email", Role: "pengetua"})
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 2)
	assert.Equal(t, "email", ve.Fields[0].Field)
	assert.Equal(t, "role", ve.Fields[1].Field)
	assert.Equal(t, "has an unsupported value", ve.Fields[1].Error)
}

func TestStructOK(t *testing.T) {
	assert.NoError(t, Struct(payload{Email: "a@moe-dl.edu.my", Role: "guru"}))
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{email: "a@moe-dl.edu.my", ok: true},
		{email: " A@MOE-DL.EDU.MY ", ok: true},
		{email: "a@gmail.com"},
		{email: "a@moe-dl.edu.my.evil.com"},
	}
	for _, tt := range tests {
		err := EmailDomain(tt.email, "@moe-dl.edu.my")
		if tt.ok {
			assert.NoError(t, err, tt.email)
			continue
		}
		assert.ErrorIs(t, err, ErrEmailDomain, tt.email)
		assert.True(t, IsValidation(err))
	}
}
