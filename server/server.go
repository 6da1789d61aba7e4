package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"loopcut/cache"
	"loopcut/config"
	"loopcut/core/fetch"
	"loopcut/core/media"
	"loopcut/core/merge"
	"loopcut/core/split"
	"loopcut/logger"
	"loopcut/storage"
)

// Start initializes the collaborators and runs the HTTP server until
// SIGINT/SIGTERM.
func Start(cfg *config.Config) {
	server := &http.Server{
		Addr: ":" + cfg.Port,
		// Long timeouts: a task holds the request open for the whole
		// download/export/upload pipeline.
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	publisher, err := storage.NewPublisher(cfg)
	if err != nil {
		logger.Fatal("failed to initialize R2 storage", logger.ErrorField(err))
	}

	if err := cache.Connect(cfg); err != nil {
		// The worker runs fine stateless; a broken cache only costs replays.
		logger.Warn("result cache unavailable, continuing without it", logger.ErrorField(err))
	}
	defer cache.Close()

	ffmpeg := media.NewFFmpeg(cfg.FFmpegPath, cfg.FFprobePath, media.ExecRunner{})
	audioFetch := fetch.NewClient(5 * time.Minute)
	videoFetch := fetch.NewClient(10 * time.Minute)

	var store split.ResultStore
	if rc := cache.NewResultCache(cfg.ResultCacheTTL); rc != nil {
		store = rc
	}

	splitter := split.NewProcessor(cfg, audioFetch, ffmpeg, ffmpeg, publisher, store)
	merger := merge.NewMerger(cfg, videoFetch, ffmpeg, publisher)

	taskHandler := NewTaskHandler(splitter, merger)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(authMiddleware(cfg.AuthToken))
	api.HandleFunc("/task", taskHandler.HandleTask).Methods(http.MethodPost)
	api.HandleFunc("/split", taskHandler.HandleSplit).Methods(http.MethodPost)
	api.HandleFunc("/merge", taskHandler.HandleMerge).Methods(http.MethodPost)

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting",
			logger.String("addr", server.Addr),
			logger.Bool("authEnabled", cfg.AuthToken != ""),
			logger.Bool("resultCache", store != nil))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server stopped")
}
