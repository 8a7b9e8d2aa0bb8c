// Package web provides an HTTP status server for the plant monitor.
package web

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/sweeney/plant-monitor/internal/status"
	"github.com/sweeney/plant-monitor/internal/store"
)

// History returns the most recent persisted rows, newest first.
type History interface {
	Recent(n int) ([]store.Row, error)
}

const (
	defaultHistory = 60
	maxHistory     = 3600
)

// Server serves the status page over HTTP.
type Server struct {
	echo    *echo.Echo
	addr    string
	tracker *status.Tracker
	history History
}

// New creates a Server that reads state from the given tracker. history may
// be nil, in which case /history.json is not served.
func New(addr string, tracker *status.Tracker, history History) *Server {
	s := &Server{addr: addr, tracker: tracker, history: history}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.GET("/", s.handleIndex)
	e.GET("/index.html", s.handleIndex)
	e.GET("/index.json", s.handleJSON)
	if history != nil {
		e.GET("/history.json", s.handleHistory)
	}
	s.echo = e
	return s
}

// Handler returns the HTTP handler. Useful for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.echo.Start(s.addr)
}

// Serve accepts connections on the given listener.
func (s *Server) Serve(ln net.Listener) error {
	s.echo.Listener = ln
	return s.echo.Start("")
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleIndex(c echo.Context) error {
	var buf bytes.Buffer
	if err := renderHTML(&buf, s.tracker.Snapshot()); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) handleJSON(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) handleHistory(c echo.Context) error {
	n := defaultHistory
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		n = parsed
	}
	if n > maxHistory {
		n = maxHistory
	}

	rows, err := s.history.Recent(n)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, formatHistory(rows))
}
