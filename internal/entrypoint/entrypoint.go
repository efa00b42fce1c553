package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/readingcenter/internal/activity"
	"github.com/mrlokans/readingcenter/internal/auth"
	"github.com/mrlokans/readingcenter/internal/config"
	"github.com/mrlokans/readingcenter/internal/database"
	dbactivity "github.com/mrlokans/readingcenter/internal/database/activity"
	"github.com/mrlokans/readingcenter/internal/database/books"
	"github.com/mrlokans/readingcenter/internal/database/content"
	dbreservations "github.com/mrlokans/readingcenter/internal/database/reservations"
	"github.com/mrlokans/readingcenter/internal/database/settings"
	"github.com/mrlokans/readingcenter/internal/database/users"
	http_controllers "github.com/mrlokans/readingcenter/internal/http"
	"github.com/mrlokans/readingcenter/internal/notify"
	"github.com/mrlokans/readingcenter/internal/reservations"
	"github.com/mrlokans/readingcenter/internal/scheduler"
	"github.com/mrlokans/readingcenter/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the workers go away
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting %s v%s", cfg.Center.Name, version)

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	loc := cfg.Center.Location()

	catalog := books.NewRepository(db.DB)
	site := content.NewRepository(db.DB)
	reservationRepo := dbreservations.NewRepository(db.DB)
	userRepo := users.NewRepository(db.DB)
	activityRepo := dbactivity.NewRepository(db.DB)
	activityService := activity.NewService(activityRepo)

	dispatcher := notify.NewDispatcher(db.DB, notify.NewMailer(cfg.Notifications), cfg.Notifications, cfg.Center)

	routerCfg := http_controllers.RouterConfig{
		Database:     db,
		Activity:     activityService,
		Reservations: reservationRepo,
		Books:        catalog,
		Authors:      catalog,
		Categories:   catalog,
		Groups:       site,
		Events:       site,
		News:         site,
		Contacts:     site,
		Newsletter:   site,
		Settings:     settings.NewRepository(db.DB),
		Users:        userRepo,
		AuthConfig:   cfg.Auth,
		Version:      version,
		CenterName:   cfg.Center.Name,
	}

	// Notifications go through the task queue when it runs, otherwise they are
	// delivered in the background of the request that caused them.
	var notifier interface {
		reservations.Notifier
		http_controllers.ContactNotifier
	}
	var asyncNotifier *notify.AsyncNotifier
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var jobs *scheduler.Scheduler

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.FromAppConfig(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewSendNotificationQueue(dispatcher),
			tasks.NewSendContactAckQueue(dispatcher),
			tasks.NewVisitRemindersQueue(reservationRepo, dispatcher),
			tasks.NewCleanupActivityLogQueue(activityRepo),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		notifier = tasks.NewQueueNotifier(taskClient)
		routerCfg.TaskClient = taskClient

		if cfg.Scheduler.Enabled {
			jobs = scheduler.New(taskClient, cfg.Scheduler, loc)
			if err := jobs.Start(taskCtx); err != nil {
				log.Fatalf("Failed to start scheduler: %v", err)
			}
			routerCfg.Jobs = jobs
		} else {
			log.Printf("[SCHEDULER] Disabled, periodic jobs will not run")
		}
	} else {
		log.Printf("Task queue disabled, notifications are delivered in-process and the scheduler is off")
		asyncNotifier = notify.NewAsyncNotifier(dispatcher)
		notifier = asyncNotifier
	}
	routerCfg.ContactNotifier = notifier

	opts := []reservations.Option{
		reservations.WithLocation(loc),
		reservations.WithNotifier(notifier),
	}
	routerCfg.Admitter = reservations.NewEngine(db.DB, opts...)
	routerCfg.Lifecycle = reservations.NewManager(db.DB, opts...)

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService := auth.NewService(userRepo, cfg.Auth)

		secret, err := signingSecret(cfg.Auth.JWTSecret)
		if err != nil {
			log.Fatalf("Failed to prepare signing secret: %v", err)
		}
		tokens := auth.NewTokenIssuer(secret, cfg.Auth.TokenTTL)

		var store scs.Store
		if db.Driver == config.DriverSQLite {
			sqlDB, err := db.DB.DB()
			if err != nil {
				log.Fatalf("Failed to get SQL DB for sessions: %v", err)
			}
			store, err = auth.NewSQLiteSessionStore(sqlDB)
			if err != nil {
				log.Fatalf("Failed to initialize session store: %v", err)
			}
		} else {
			log.Printf("Sessions are kept in memory with driver %s", db.Driver)
		}
		sessionManager := auth.NewSessionManager(store, cfg.Auth)

		routerCfg.AuthService = authService
		routerCfg.SessionManager = sessionManager
		routerCfg.AuthMiddleware = auth.NewMiddleware(authService, tokens, sessionManager, cfg.Auth)
		routerCfg.AuthController = auth.NewAuthController(authService, tokens, sessionManager, activityService, cfg.Auth)
		routerCfg.CSRFSecret = secret
		routerCfg.SecureCookies = cfg.Auth.SecureCookies

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. POST /api/auth/setup or run 'create-admin' to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (every caller is an administrator)")
	}

	if cfg.Center.PublicRateLimit > 0 {
		routerCfg.PublicRateLimiter = http_controllers.NewPublicRateLimiter(cfg.Center.PublicRateLimit, cfg.Center.PublicRateBurst)
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if jobs != nil {
			jobs.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if asyncNotifier != nil {
			asyncNotifier.Wait()
		}
		if routerCfg.AuthController != nil {
			routerCfg.AuthController.Stop()
		}
		if routerCfg.PublicRateLimiter != nil {
			routerCfg.PublicRateLimiter.Stop()
		}
		activityService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// signingSecret decodes a hex secret, accepts any other non-empty value as raw
// bytes and generates a process-local secret when none is configured.
func signingSecret(configured string) ([]byte, error) {
	if configured != "" {
		if decoded, err := hex.DecodeString(configured); err == nil {
			return decoded, nil
		}
		return []byte(configured), nil
	}
	generated, err := auth.GenerateSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("WARNING: generated a signing secret, tokens will not survive a restart (set AUTH_JWT_SECRET to persist)")
	return hex.DecodeString(generated)
}
