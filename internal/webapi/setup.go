package webapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ppiankov/episodic/internal/model"
)

// NewServer builds the read-only API over index. The index must not be
// modified while the server runs.
func NewServer(index *model.CorpusIndex, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.Gzip())
	if logger != nil {
		e.Use(requestLogger(logger.With("component", "webapi")))
	}
	e.HTTPErrorHandler = wrapError

	api := e.Group("/api")
	Episodes(api.Group("/episodes"), index)
	Frequencies(api.Group("/frequencies"), index)

	return e
}

// Setup starts the server on addr. The channel yields the error that
// stopped it and is closed afterwards.
func Setup(addr string, index *model.CorpusIndex, logger *slog.Logger) (*echo.Echo, <-chan error) {
	e := NewServer(index, logger)

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)

		err := e.Start(addr)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return e, errCh
}

func wrapError(err error, c echo.Context) {
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		_ = c.JSON(httpErr.Code, map[string]string{"error": fmt.Sprint(httpErr.Message)})
	case errors.Is(err, model.ErrInvalidEpisodeID):
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, model.ErrUnknownEpisode):
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			logger.Debug("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"error", err)
			return err
		}
	}
}
