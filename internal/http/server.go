package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"gopkg.in/go-playground/validator.v9"

	"github.com/DrkBotBase/delivery"
	"github.com/DrkBotBase/delivery/config"
	"github.com/DrkBotBase/delivery/internal/http/controller"
	"github.com/DrkBotBase/delivery/pkg/validations"
)

type CustomValidator struct {
	Validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.Validator.Struct(i)
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewHttpServer(conf config.AppConfig, logger *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Validator = &CustomValidator{Validator: validations.New()}
	e.HTTPErrorHandler = HttpErrorHandler(logger)

	// setup middlewares
	e.Use(middleware.Recover())
	if !conf.IsTest() {
		e.Use(RequestLogger(logger))
	}

	return e
}

func RequestLogger(logger *logrus.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"method":     v.Method,
				"path":       v.URIPath,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
				"remote_ip":  v.RemoteIP,
			})
			if v.RequestID != "" {
				entry = entry.WithField("request_id", v.RequestID)
			}
			if owner, ok := c.Get(controller.OwnerKey).(string); ok {
				entry = entry.WithField("owner_id", owner)
			}

			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

// HttpErrorHandler renders application errors with the status of their code.
// Internal errors are logged and never shown to the client.
func HttpErrorHandler(logger *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {

		if c.Response().Committed {
			return
		}

		var appErr *delivery.Error
		if errors.As(err, &appErr) {
			httpCode := delivery.ErrCodeToHTTPStatus(err)
			res := ErrorResponse{
				Code:    delivery.ErrorCode(err),
				Message: delivery.DefaultErrorMessage,
			}

			if httpCode < 500 {
				res.Message = delivery.ErrorMessage(err)
			} else {
				var data any
				if fields := delivery.ErrorFields(err); fields != nil {
					data = fields
				}
				config.LogError(logger, "http", "HttpErrorHandler", c.Path(), data, err)
			}

			c.JSON(httpCode, res)
			return
		}

		var echoError *echo.HTTPError
		if errors.As(err, &echoError) {
			c.JSON(echoError.Code, ErrorResponse{
				Code:    codeForStatus(echoError.Code),
				Message: messageOf(echoError),
			})
			return
		}

		config.LogError(logger, "http", "HttpErrorHandler", c.Path(), nil, err)

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    delivery.EINTERNAL,
			Message: delivery.DefaultErrorMessage,
		})
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return delivery.EINVALID
	case http.StatusUnauthorized:
		return delivery.EUNAUTHORIZED
	case http.StatusNotFound:
		return delivery.ENOTFOUND
	case http.StatusConflict:
		return delivery.ECONFLICT
	}
	if status >= 500 {
		return delivery.EINTERNAL
	}
	return http.StatusText(status)
}

func messageOf(e *echo.HTTPError) string {
	switch m := e.Message.(type) {
	case string:
		return m
	case error:
		return m.Error()
	default:
		return http.StatusText(e.Code)
	}
}
