// Package remote exposes the run session over HTTP so a phone or a second
// screen on the mat can drive the timer.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hammamikhairi/dojotimer/internal/command"
	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/logger"
	"github.com/hammamikhairi/dojotimer/internal/session"
	"github.com/hammamikhairi/dojotimer/internal/title"
)

// Controller is the session surface the server drives.
type Controller interface {
	command.Controller
	Steps() []domain.Step
}

var _ Controller = (*session.Session)(nil)

// StepInfo is one row of the GET /steps listing.
type StepInfo struct {
	Index       int          `json:"index"`
	Title       string       `json:"title"`
	DurationSec int          `json:"durationSec"`
	Color       domain.Color `json:"color,omitempty"`
}

type gotoRequest struct {
	Step int `json:"step" binding:"required,min=1"`
}

type durationRequest struct {
	Value string `json:"value" binding:"required"`
}

// Server serves the remote-control API.
type Server struct {
	log    *logger.Logger
	ctrl   Controller
	parser *command.Parser
	router *gin.Engine
}

// New builds the router. Gin runs in release mode; requests are logged at
// debug level through log.
func New(ctrl Controller, log *logger.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		log:    log,
		ctrl:   ctrl,
		parser: command.NewParser(log),
		router: gin.New(),
	}

	s.router.Use(gin.Recovery(), s.requestLog())
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/state", s.getState)
	s.router.GET("/steps", s.getSteps)
	s.router.POST("/actions/:action", s.postAction)
	s.router.POST("/goto", s.postGoto)
	s.router.POST("/duration", s.postDuration)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	s.log.Go(func() {
		s.log.Info("remote: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	})

	select {
	case err := <-errCh:
		return fmt.Errorf("remote server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("remote shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("remote server: %w", err)
	}
	s.log.Info("remote: stopped")
	return nil
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("remote: %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) getState(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.View())
}

func (s *Server) getSteps(c *gin.Context) {
	steps := s.ctrl.Steps()
	out := make([]StepInfo, len(steps))
	for i, st := range steps {
		out[i] = StepInfo{
			Index:       i + 1,
			Title:       title.ForStep(st),
			DurationSec: st.DurationSec,
			Color:       st.Color,
		}
	}
	c.JSON(http.StatusOK, gin.H{"steps": out})
}

// postAction runs a named action such as start, pause or next. Actions
// that need an argument have their own routes.
func (s *Server) postAction(c *gin.Context) {
	cmd := s.parser.Parse(c.Param("action"))
	switch cmd.Action {
	case command.ActionGoto, command.ActionSetDuration, command.ActionQuit:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("action %q not allowed here", cmd.Input)})
		return
	}

	v, ok := command.Dispatch(s.ctrl, cmd)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown action %q", cmd.Input)})
		return
	}
	s.log.Info("remote: %s", cmd.Action)
	c.JSON(http.StatusOK, v)
}

func (s *Server) postGoto(c *gin.Context) {
	var req gotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.ctrl.SkipToStep(req.Step-1))
}

func (s *Server) postDuration(c *gin.Context) {
	var req durationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sec, err := command.ParseSeconds(req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.ctrl.UpdateActiveTimerDuration(sec))
}
