package server

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cutroom/config"
	"cutroom/core/autosave"
	"cutroom/core/importer"
	"cutroom/core/session"
	"cutroom/db"
	"cutroom/logger"
	"cutroom/metrics"
	"cutroom/repository"
	"cutroom/storage"

	"github.com/gorilla/mux"
)

// Start initializes the backing services and runs the HTTP server until
// SIGINT/SIGTERM, then saves every open session before exiting.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogOutput,
	})

	if err := storage.InitMinio(); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect project store: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.ConnectRedis(cfg); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer db.CloseRedis()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	assetRepo := repository.NewMySQLAssetRepository()
	projectRepo := repository.NewGormProjectRepository(db.GormDB)

	sessions := session.NewManager(projectRepo)
	m := metrics.New()
	apiHandler := NewAPIHandler(userRepo, assetRepo, projectRepo, sessions, m, cfg)

	saver, err := autosave.NewService(sessions, cfg)
	if err != nil {
		log.Fatalf("Failed to start autosave: %v", err)
	}
	saver.Start()
	defer saver.Stop()

	watcher, err := importer.NewWatcher(cfg, assetRepo, 1)
	if err != nil {
		logger.Error("import watcher unavailable", logger.ErrorField(err))
	} else if watcher != nil {
		watcher.Start()
		defer watcher.Stop()
	}

	router := buildRouter(apiHandler, m, sessions)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server listening", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", logger.ErrorField(err))
	}
	saveOpenSessions(ctx, sessions)
}

// buildRouter wires every endpoint onto a gorilla/mux router with the
// CORS and metrics middleware.
func buildRouter(h *APIHandler, m *metrics.Metrics, sessions *session.Manager) *mux.Router {
	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			m.IncRequests()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status >= 400 {
				m.IncErrors()
			}
		})
	})

	// Authentication
	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/register", h.RegisterHandler).Methods(http.MethodPost)

	// Projects and session lifecycle
	router.HandleFunc("/api/projects", h.AuthMiddleware(h.CreateProjectHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects", h.AuthMiddleware(h.ListProjectsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", h.AuthMiddleware(h.GetProjectHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}", h.AuthMiddleware(h.DeleteProjectHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/projects/{id}/open", h.AuthMiddleware(h.OpenProjectHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/save", h.AuthMiddleware(h.SaveProjectHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/close", h.AuthMiddleware(h.CloseProjectHandler)).Methods(http.MethodPost)

	// Timeline editing
	router.HandleFunc("/api/projects/{id}/timeline", h.AuthMiddleware(h.GetTimelineHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/tracks", h.AuthMiddleware(h.AddTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips", h.AuthMiddleware(h.AddClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}", h.AuthMiddleware(h.UpdateClipHandler)).Methods(http.MethodPatch)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}", h.AuthMiddleware(h.DeleteClipHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}/move", h.AuthMiddleware(h.MoveClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}/track", h.AuthMiddleware(h.MoveClipToTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}/split", h.AuthMiddleware(h.SplitClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}/reset-trim", h.AuthMiddleware(h.ResetTrimHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/clips/{clipId}/select", h.AuthMiddleware(h.SelectClipHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/undo", h.AuthMiddleware(h.UndoHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/projects/{id}/view", h.AuthMiddleware(h.ViewStateHandler)).Methods(http.MethodPost)

	// Timeline queries
	router.HandleFunc("/api/projects/{id}/gaps", h.AuthMiddleware(h.GetGapsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/clip-at", h.AuthMiddleware(h.GetClipAtHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/playback", h.AuthMiddleware(h.GetPlaybackHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/snap-targets", h.AuthMiddleware(h.GetSnapTargetsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/projects/{id}/snap", h.AuthMiddleware(h.SnapHandler)).Methods(http.MethodPost)

	// Assets
	router.HandleFunc("/api/assets", h.AuthMiddleware(h.UploadAssetHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/assets", h.AuthMiddleware(h.ListAssetsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/assets/{assetId}", h.AuthMiddleware(h.DeleteAssetHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/assets/{assetId}/url", h.AuthMiddleware(h.GetAssetURLHandler)).Methods(http.MethodGet)

	// Interactive drag channel
	router.HandleFunc("/ws/projects/{id}/edit", h.EditChannelHandler).Methods(http.MethodGet)

	router.Handle("/metrics", m.Handler(func() {
		m.SetOpenSessions(sessions.OpenCount())
	})).Methods(http.MethodGet)

	return router
}

// statusRecorder captures the response status for the error counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes through to the underlying writer so the websocket
// upgrade still works behind the metrics middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// saveOpenSessions flushes every open session to the database during
// shutdown.
func saveOpenSessions(ctx context.Context, sessions *session.Manager) {
	for _, sess := range sessions.DirtySessions() {
		if err := sessions.Save(ctx, sess.ProjectID); err != nil {
			logger.Error("failed to save session on shutdown",
				logger.String("project", sess.ProjectID), logger.ErrorField(err))
		}
	}
}
