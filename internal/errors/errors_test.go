package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"lumos/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapClassifiesDomainErrors(t *testing.T) {
	schemaErr := Wrap(core.NewMissingColumnsError([]string{"line_area_1"}), "projection failed")
	assert.Equal(t, CodeSchemaError, GetCode(schemaErr))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(schemaErr))
	assert.True(t, stderrors.Is(schemaErr, core.ErrMissingColumn))

	inputErr := Wrap(core.NewUnknownDelimiterError("+"), "bad form")
	assert.Equal(t, CodeInvalidInput, GetCode(inputErr))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(inputErr))

	other := Wrap(stderrors.New("disk full"), "export failed")
	assert.Equal(t, CodeInternalError, GetCode(other))
	assert.Equal(t, "export failed: disk full", other.Error())
}

func TestWrapKeepsAppErrorCode(t *testing.T) {
	base := InvalidInput("x must be a declared variable")
	wrapped := Wrapf(base, "plot %s", "TLH")
	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}
