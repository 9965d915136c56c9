package delivery_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DrkBotBase/delivery"
)

func TestErrorCodeFollowsChain(t *testing.T) {
	inner := &delivery.Error{Code: delivery.ENOTFOUND, Message: "Shift not found"}
	wrapped := delivery.OpError("usecase.a", delivery.OpError("repo.b", inner))

	assert.Equal(t, delivery.ENOTFOUND, delivery.ErrorCode(wrapped))
	assert.Equal(t, "Shift not found", delivery.ErrorMessage(wrapped))
	assert.Equal(t, http.StatusNotFound, delivery.ErrCodeToHTTPStatus(wrapped))
	assert.True(t, delivery.IsCode(wrapped, delivery.ENOTFOUND))
}

func TestErrorCodeOfForeignError(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, delivery.EINTERNAL, delivery.ErrorCode(err))
	assert.Equal(t, delivery.DefaultErrorMessage, delivery.ErrorMessage(err))
	assert.Equal(t, http.StatusInternalServerError, delivery.ErrCodeToHTTPStatus(err))

	wrapped := delivery.OpError("usecase.a", err)
	assert.Equal(t, delivery.EINTERNAL, delivery.ErrorCode(wrapped))
	assert.ErrorIs(t, wrapped, err)
}

func TestErrorWithCode(t *testing.T) {
	err := delivery.OpError("op", delivery.ErrorWithCode(errors.New("bad amount"), delivery.EINVALID))

	assert.Equal(t, delivery.EINVALID, delivery.ErrorCode(err))
	assert.Equal(t, "bad amount", delivery.ErrorMessage(err))
	assert.Equal(t, http.StatusBadRequest, delivery.ErrCodeToHTTPStatus(err))
	assert.Equal(t, "op: bad amount", err.Error())
}

func TestErrorStatusMapping(t *testing.T) {
	cases := map[string]int{
		delivery.ECONFLICT:     http.StatusConflict,
		delivery.EINVALID:      http.StatusBadRequest,
		delivery.ENOTFOUND:     http.StatusNotFound,
		delivery.EUNAUTHORIZED: http.StatusUnauthorized,
		delivery.EINTERNAL:     http.StatusInternalServerError,
	}

	for code, status := range cases {
		assert.Equal(t, status, delivery.ErrCodeToHTTPStatus(delivery.NewError(code, "x")), code)
	}
}

func TestNilErrors(t *testing.T) {
	assert.Nil(t, delivery.OpError("op", nil))
	assert.Nil(t, delivery.ErrorWithCode(nil, delivery.EINVALID))
	assert.Equal(t, "", delivery.ErrorCode(nil))
	assert.Equal(t, "", delivery.ErrorMessage(nil))
}

func TestErrorString(t *testing.T) {
	err := &delivery.Error{Code: delivery.ECONFLICT, Message: "A shift is already open"}
	assert.Equal(t, "<conflict> A shift is already open", err.Error())
}

func TestErrorFieldsFollowsChain(t *testing.T) {
	inner := &delivery.Error{
		Code:   delivery.ECONFLICT,
		Fields: map[string]interface{}{"owner_id": "courier-1", "shift_id": uint64(7)},
	}
	wrapped := delivery.OpError("usecase.a", delivery.OpError("repo.b", inner))

	assert.Equal(t, inner.Fields, delivery.ErrorFields(wrapped))
	assert.Nil(t, delivery.ErrorFields(delivery.OpError("usecase.a", errors.New("boom"))))
	assert.Nil(t, delivery.ErrorFields(errors.New("boom")))
	assert.Nil(t, delivery.ErrorFields(nil))
}
