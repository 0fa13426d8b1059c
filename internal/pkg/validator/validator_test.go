package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	DNI   string `validate:"required,len=8,digits"`
	Email string `validate:"required,email"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{DNI: "12345678", Email: "a@b.pe"}))

	errs := Validate(sample{DNI: "1234abcd", Email: "nope"})
	assert.Equal(t, "digits", errs["DNI"])
	assert.Equal(t, "email", errs["Email"])
	assert.Equal(t, "DNI: digits, Email: email", Summary(errs))
}
