package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type login struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type settings struct {
	Store string `env:"SESSION_STORE" validate:"oneof=file sqlite redis"`
}

func TestStructReportsFieldsByTag(t *testing.T) {
	err := Struct(login{Email: "not-an-email"})
	require.Error(t, err)

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
	require.Contains(t, fields["email"], "valid email")
	require.Contains(t, fields["password"], "required")
}

func TestStructUsesEnvTag(t *testing.T) {
	err := Struct(settings{Store: "memcache"})
	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	require.Contains(t, fields, "SESSION_STORE")
}

func TestStructAcceptsValid(t *testing.T) {
	require.NoError(t, Struct(login{Email: "ana@example.com", Password: "pw"}))
	require.NoError(t, Struct(settings{Store: "redis"}))
}
