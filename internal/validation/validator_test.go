package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/inkshelfapp/inkshelf-server/internal/errors"
)

type createBookInput struct {
	Title           string  `json:"title" validate:"required,max=500"`
	ListPrice       float64 `json:"list_price" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
}

func TestValidator_Valid(t *testing.T) {
	v := New()
	err := v.Validate(createBookInput{Title: "A Title", ListPrice: 9.99, DiscountPercent: 10})
	assert.NoError(t, err)
}

func TestValidator_CollectsFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(createBookInput{ListPrice: -1, DiscountPercent: 150})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	// Field names come from JSON tags, messages are human-readable.
	assert.Equal(t, "is required", fields["title"])
	assert.Contains(t, fields["list_price"], "greater than or equal to 0")
	assert.Contains(t, fields["discount_percent"], "less than or equal to 100")
}
