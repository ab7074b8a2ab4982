package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"rushivan/internal/handler"
	"rushivan/internal/middleware"
	"rushivan/internal/usecase"
	"rushivan/internal/validator"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type Deps struct {
	Orders      *usecase.OrderUsecase
	Payments    *usecase.PaymentUsecase
	AdminOrders *usecase.AdminOrderUsecase
	DB          handler.Pinger

	Logger         *zap.Logger
	JWTSecret      string
	RequestTimeout time.Duration
}

func New(d Deps) *echo.Echo {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validator.New()
	e.HTTPErrorHandler = errorHandler(d.Logger)

	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(middleware.Metrics())
	e.Use(echomw.Recover())
	if d.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: d.RequestTimeout}))
	}

	RegisterRoutes(e, d)
	return e
}

// 起動してctxが終わったらgraceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// ルート未登録などechoのエラーも {"error": ...} にそろえる
func errorHandler(l *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := handler.ErrorResponse{Error: "internal error"}

		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
			status = he.Code
			if msg, ok := he.Message.(string); ok {
				body.Error = msg
			} else {
				body.Error = http.StatusText(he.Code)
			}
		default:
			if ue, ok := usecase.AsHTTPError(err); ok {
				status = ue.Status
				body.Error = ue.Message
				if status < http.StatusInternalServerError {
					body.Fields = ue.Fields
				}
			}
		}

		if status >= http.StatusInternalServerError {
			l.Error("unhandled error", zap.Error(err), zap.String("path", c.Path()))
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}
