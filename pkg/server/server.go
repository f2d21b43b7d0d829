// Package server wires the HTTP surface: the upload endpoint, the event
// websocket, the card script route and the metrics handler.
package server

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/afero"

	"github.com/voicerec/voicerec/pkg/bus"
	"github.com/voicerec/voicerec/pkg/config"
	"github.com/voicerec/voicerec/pkg/frontend"
	"github.com/voicerec/voicerec/pkg/logging"
	"github.com/voicerec/voicerec/pkg/recorder"
)

// UploadPath is the upload endpoint. The path and its field names are a
// stable external contract.
const UploadPath = "/api/voice_recorder/upload"

// EventsPath is where frontend cards subscribe for saved events.
const EventsPath = "/api/voice_recorder/ws"

const shutdownGrace = 5 * time.Second

// UploadResponse is the JSON body of a successful upload.
type UploadResponse struct {
	Success   bool   `json:"success"`
	Msg       string `json:"msg"`
	BrowserID string `json:"browserID"`
	EventName string `json:"eventName"`
	Filename  string `json:"filename"`
	Path      string `json:"path"`
	Size      int64  `json:"size"`
	UserID    string `json:"user_id"`
	RequestID string `json:"requestID"`
}

// ErrorResponse is the JSON body of every handled failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// Server owns the gin engine and the http.Server around it.
type Server struct {
	cfg      *config.Config
	fs       afero.Fs
	registry *recorder.Registry
	hub      *bus.Hub
	logger   *logging.Logger
}

// New builds a server over an opened registry. hub may be nil when no
// websocket listeners are wanted (the sweep command, tests).
func New(cfg *config.Config, fs afero.Fs, registry *recorder.Registry, hub *bus.Hub, logger *logging.Logger) *Server {
	return &Server{cfg: cfg, fs: fs, registry: registry, hub: hub, logger: logger}
}

// Router assembles the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	if s.cfg.Server.CORS.Enable {
		router.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.Server.CORS.AllowOrigins,
			AllowMethods: s.cfg.Server.CORS.AllowMethods,
			AllowHeaders: s.cfg.Server.CORS.AllowHeaders,
		}))
	}

	if len(s.cfg.Server.TrustedProxies) > 0 {
		router.ForwardedByClientIP = true
		if err := router.SetTrustedProxies(s.cfg.Server.TrustedProxies); err != nil {
			s.logger.Error("unable to set trusted proxies", "error", err)
		}
	}

	router.POST(UploadPath, s.handleUpload)

	if s.hub != nil {
		router.GET(EventsPath, s.hub.Handler())
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cardPath := filepath.Join(s.cfg.Roots.AssetsRoot, frontend.ScriptName)
	frontend.Register(router, s.fs, cardPath, s.logger)

	return router
}

// handleUpload converts every failure into a JSON body with a success flag;
// the caller never sees a bare transport error for handled failure modes.
func (s *Server) handleUpload(c *gin.Context) {
	requestID := uuid.New().String()
	logger := s.logger.With("requestID", requestID)

	instance, ok := s.registry.Get(c.Query("entry"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Msg: "Unknown recorder entry"})
		return
	}

	reader, err := c.Request.MultipartReader()
	if err != nil {
		logger.Warn("invalid multipart request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Msg: "Invalid multipart body"})
		return
	}

	result, err := instance.Upload(c.Request.Context(), reader)
	if err != nil {
		if errors.Is(err, recorder.ErrNoFilePart) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Msg: "No file field found"})
			return
		}
		logger.Error("an error occurred while saving the recording", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Msg: "Save failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Success:   true,
		Msg:       "Recording saved",
		BrowserID: result.BrowserID,
		EventName: result.EventName,
		Filename:  result.Filename,
		Path:      result.PublicPath,
		Size:      result.Size,
		UserID:    result.UserID,
		RequestID: requestID,
	})
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port

	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
