package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/taskbot/internal/client"
	"github.com/yukikurage/taskbot/internal/client/trello"
	"github.com/yukikurage/taskbot/internal/config"
	"github.com/yukikurage/taskbot/internal/constants"
	"github.com/yukikurage/taskbot/internal/database"
	"github.com/yukikurage/taskbot/internal/handlers"
	"github.com/yukikurage/taskbot/internal/repository"
	"github.com/yukikurage/taskbot/internal/scheduler"
	"github.com/yukikurage/taskbot/internal/services"
	"github.com/yukikurage/taskbot/internal/surface"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	outbox := surface.NewOutbox()
	sched := scheduler.New(scheduler.WithOnEnd(func(taskID string, state scheduler.State, err error) {
		if state == scheduler.StateFailed {
			log.Printf("Reminder for task %s failed: %v", taskID, err)
		}
	}))

	var boards client.BoardFactory
	if cfg.TrelloAPIKey != "" && cfg.TrelloToken != "" {
		var opts []trello.Option
		if cfg.TrelloBaseURL != "" {
			opts = append(opts, trello.WithBaseURL(cfg.TrelloBaseURL))
		}
		boards = trello.NewFactory(cfg.TrelloAPIKey, cfg.TrelloToken, opts...)
	}

	// Initialize AI service
	var ai services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		ai = services.NewAIService(cfg.OpenAIAPIKey)
	}

	registry := services.NewRegistry(services.RegistryConfig{
		Tasks:      taskRepo,
		Workspaces: repository.NewWorkspaceRepository(db),
		Surfaces:   outbox,
		Scheduler:  sched,
		Boards:     boards,
		AI:         ai,
		MaxOptions: cfg.SelectMaxOptions,
	})
	defer sched.Stop()
	defer registry.DetachAll()

	if err := registry.AttachAll(ctx); err != nil {
		return err
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	r := gin.Default()
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	handlers.RegisterRoutes(r,
		handlers.NewAuthHandler(services.NewAuthService(cfg.BridgeUsername, cfg.BridgePasswordHash)),
		handlers.NewWorkspaceHandler(registry, outbox, taskRepo),
		registry,
	)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Println("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	switch cfg.SessionStore {
	case "cookie":
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	default:
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	}

	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
