package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("a@x.com"))
	assert.NoError(t, ValidateEmail("User.Name+tag@example.co.uk"))

	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("no-at-sign"))
	assert.Error(t, ValidateEmail("a@"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", 250)+"@x.com"))
}
