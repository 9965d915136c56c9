package http_test

import (
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/internal/http"
)

func TestErrorHandlerLogsFieldsOfWrappedError(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(nethttp.MethodPost, "/api/shifts/end", nil), rec)

	cause := &delivery.Error{
		Code:   delivery.EINTERNAL,
		Err:    errors.New("connection reset"),
		Fields: map[string]interface{}{"owner_id": "courier-1", "shift_id": uint64(7)},
	}
	http.HttpErrorHandler(log)(delivery.OpError("usecase.shift.ShiftUseCase.EndShift", cause), c)

	require.Equal(t, nethttp.StatusInternalServerError, rec.Code)

	var body http.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, delivery.EINTERNAL, body.Code)
	require.Equal(t, delivery.DefaultErrorMessage, body.Message)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.ErrorLevel, entry.Level)
	require.Equal(t, cause.Fields, entry.Data["data"])
}

func TestErrorHandlerShowsClientErrorMessage(t *testing.T) {
	log, hook := test.NewNullLogger()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(nethttp.MethodPost, "/api/shifts/start", nil), rec)

	err := delivery.OpError("usecase.shift.ShiftUseCase.StartShift", delivery.NewError(delivery.ECONFLICT, "A shift is already open"))
	http.HttpErrorHandler(log)(err, c)

	require.Equal(t, nethttp.StatusConflict, rec.Code)

	var body http.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "A shift is already open", body.Message)
	require.Empty(t, hook.AllEntries())
}
