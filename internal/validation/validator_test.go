package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type registration struct {
	Username string  `json:"username" validate:"required,max=10"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=6"`
	PhoneNo  *string `json:"phone_no" validate:"min=5"`
}

type tenantForm struct {
	SchemaName string `json:"schema_name" validate:"required,schema_name,max=63"`
}

func TestValidateOK(t *testing.T) {
	v := NewValidator()

	err := v.Validate(registration{
		Username: "alice",
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestValidateRequired(t *testing.T) {
	v := NewValidator()

	err := v.Validate(registration{
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "username")
	require.Contains(t, err.Error(), "required")
}

func TestValidateEmail(t *testing.T) {
	v := NewValidator()

	for _, email := range []string{"no-at-sign", "@leading", "trailing@"} {
		err := v.Validate(registration{
			Username: "alice",
			Email:    email,
			Password: "hunter22",
		})
		require.Error(t, err, "email %q", email)
		require.Contains(t, err.Error(), "email")
	}
}

func TestValidateMinMax(t *testing.T) {
	v := NewValidator()

	err := v.Validate(registration{
		Username: "alice",
		Email:    "alice@acme.test",
		Password: "short",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "minimum length is 6")

	err = v.Validate(registration{
		Username: "waytoolongname",
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "maximum length is 10")
}

func TestValidateMinSkipsEmptyOptional(t *testing.T) {
	v := NewValidator()

	var form struct {
		Password string `json:"password" validate:"min=6"`
	}

	// An optional field left empty is not length-checked
	require.NoError(t, v.Validate(form))

	form.Password = "short"
	err := v.Validate(form)
	require.Error(t, err)
	require.Contains(t, err.Error(), "minimum length is 6")

	form.Password = "longenough"
	require.NoError(t, v.Validate(form))
}

func TestValidateRequiredMinStillRejectsEmpty(t *testing.T) {
	v := NewValidator()

	var form struct {
		Password string `json:"password" validate:"required,min=6"`
	}

	err := v.Validate(form)
	require.Error(t, err)
	require.Contains(t, err.Error(), "required")
}

func TestValidateNilPointerSkipped(t *testing.T) {
	v := NewValidator()

	err := v.Validate(registration{
		Username: "alice",
		Email:    "alice@acme.test",
		Password: "hunter22",
		PhoneNo:  nil,
	})
	require.NoError(t, err)

	short := "123"
	err = v.Validate(registration{
		Username: "alice",
		Email:    "alice@acme.test",
		Password: "hunter22",
		PhoneNo:  &short,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "phone_no")
}

func TestValidateSchemaName(t *testing.T) {
	v := NewValidator()

	for _, name := range []string{"acme", "acme_inc", "a1"} {
		require.NoError(t, v.Validate(tenantForm{SchemaName: name}), "schema_name %q", name)
	}

	for _, name := range []string{"1acme", "Acme", "acme-inc", "acme inc", "_acme"} {
		require.Error(t, v.Validate(tenantForm{SchemaName: name}), "schema_name %q", name)
	}
}

func TestValidatePointerStruct(t *testing.T) {
	v := NewValidator()

	err := v.Validate(&registration{
		Username: "alice",
		Email:    "alice@acme.test",
		Password: "hunter22",
	})
	require.NoError(t, err)
}

func TestValidateNonStruct(t *testing.T) {
	v := NewValidator()
	require.Error(t, v.Validate("not a struct"))
}
