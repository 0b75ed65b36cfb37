package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/bcmimarlik/site/internal/cache"
	"github.com/bcmimarlik/site/internal/config"
	"github.com/bcmimarlik/site/internal/jobs"
	"github.com/bcmimarlik/site/internal/llm"
	_ "github.com/bcmimarlik/site/internal/llm/providers"
	"github.com/bcmimarlik/site/internal/render"
	"github.com/bcmimarlik/site/internal/service"
	"github.com/bcmimarlik/site/internal/session"
	"github.com/bcmimarlik/site/internal/store"
	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	cfg *config.Config
}

// NewServer creates a new server
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.cfg); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start serves the site until SIGINT or SIGTERM.
func Start(cfg *config.Config) error {
	gin.SetMode(gin.ReleaseMode)

	docStore, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer docStore.Close()

	documentCache, err := cache.New(cfg.Redis)
	if err != nil {
		return err
	}

	content := service.NewContentService(docStore, documentCache)

	var generator service.Generator
	if client := llm.NewClient(cfg.LLM); client.Configured() {
		generator = client
	} else {
		logrus.Warn("llm.api_key is not set, analyses will use the canned texts")
	}

	registry := session.NewRegistry(session.NewLocalClient(content))

	renderer, err := render.NewRenderer()
	if err != nil {
		return err
	}

	handler := NewRouter(Deps{
		Content:      content,
		Analysis:     service.NewAnalysisService(generator),
		Appointments: service.NewAppointmentService(),
		Auth:         NewAuthenticator(cfg.Auth),
		Sessions:     registry,
		Renderer:     renderer,
	})

	executor := jobs.NewTaskExecutor(
		jobs.NewCacheSyncTask(cfg.Jobs.CacheSync, content),
		jobs.NewSessionReaperTask(cfg.Jobs.SessionReap, registry, cfg.Session.MaxIdle),
	)
	if err := executor.Run(); err != nil {
		return err
	}
	defer executor.Stop()

	if fileStore, ok := docStore.(*store.FileStore); ok && cfg.Watch.Enabled {
		watcher, err := store.NewWatcher(fileStore.Path(), cfg.Watch.Debounce, content.Invalidate)
		if err != nil {
			return err
		}
		go watcher.Run()
		defer watcher.Stop()
		logrus.Infof("watching %s for changes", fileStore.Path())
	}

	httpPort := ":" + cfg.HTTP.Port
	rl, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	restServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// make sure to wait for the server to stop before exiting
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpPort)
		if err := restServer.Serve(rl); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Shutdown(ctx); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	wg.Wait()

	return nil
}
