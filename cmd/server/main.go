package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/angleinstitute/backend/internal/config"
	"github.com/angleinstitute/backend/internal/handler"
	"github.com/angleinstitute/backend/internal/logging"
	"github.com/angleinstitute/backend/internal/metrics"
	"github.com/angleinstitute/backend/internal/notify"
	"github.com/angleinstitute/backend/internal/repository"
	"github.com/angleinstitute/backend/internal/service"
	"github.com/angleinstitute/backend/internal/sessionstore"
	"github.com/angleinstitute/backend/internal/storage"
	"github.com/angleinstitute/backend/pkg/auth"
)

const (
	shutdownTimeout    = 10 * time.Second
	limiterSweepPeriod = 5 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	flush := logging.Setup(logging.Options{
		Level:        cfg.LogLevel,
		RollbarToken: cfg.RollbarToken,
		Environment:  cfg.AppEnv,
	})
	defer flush()
	metrics.Register()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := repository.Open(ctx, cfg.DatabaseURL, cfg.DatabaseName)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	slog.Info("database connected", "backend", stores.Backend)

	cache := sessionstore.NewMemoryCache(cfg.SessionTTL)
	submissionService := service.NewSubmissionService(stores.Submissions, cache)
	courseService := service.NewCourseService(stores.Courses)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authService := service.NewAuthService(stores.Users, tokens)

	mailer, err := newMailer(cfg)
	if err != nil {
		logging.Fatal("invalid mail configuration", "error", err)
	}
	notifier := notify.NewNotifier(mailer)
	dispatcher := notify.NewDispatcher(notifier, submissionService, notify.Recipients{
		Admin:     cfg.AdminEmail,
		Franchise: cfg.FranchiseEmail,
	})

	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		logging.Fatal("failed to create uploads dir", "dir", cfg.UploadsDir, "error", err)
	}
	images := storage.NewLocalStorage(cfg.UploadsDir, "/uploads")
	limiter := handler.NewRateLimiter(cfg.RateLimitPerMinute)

	routes := &handler.Routes{
		Base:          handler.New(stores.DB, cfg.FrontendURL),
		Submissions:   handler.NewSubmissionHandler(submissionService, dispatcher),
		Admin:         handler.NewAdminHandler(submissionService, courseService),
		Courses:       handler.NewCourseHandler(courseService),
		Auth:          handler.NewAuthHandler(authService),
		Images:        handler.NewImageHandler(images),
		RequireAdmin:  auth.RequireBearer(tokens),
		FormLimiter:   limiter,
		UploadsPrefix: "/uploads/",
		UploadsDir:    cfg.UploadsDir,
		StaticDir:     cfg.StaticDir,
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           routes.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server listening", "addr", server.Addr, "env", cfg.AppEnv, "mail_backend", cfg.MailBackend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		cache.Run(gctx, cfg.SessionSweepInterval)
		return nil
	})
	g.Go(func() error {
		limiter.Run(gctx, limiterSweepPeriod)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		// 送信中の通知を待つ
		if err := dispatcher.Wait(shutdownCtx); err != nil {
			slog.Warn("pending notifications abandoned", "error", err)
		}
		if err := stores.Close(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server stopped with error", "error", err)
		flush()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newMailer は設定された送信バックエンドの Mailer を返す
func newMailer(cfg *config.Config) (notify.Mailer, error) {
	switch cfg.MailBackend {
	case config.MailSMTP:
		return notify.NewSMTPMailer(notify.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPass,
			From:        cfg.SMTPFrom,
			ImplicitTLS: cfg.SMTPSecure,
			AllowPlain:  cfg.SMTPAllowPlain,
		})
	case config.MailSendGrid:
		from := cfg.SMTPFrom
		if from == "" {
			from = cfg.AdminEmail
		}
		return notify.NewSendGridMailer(cfg.SendGridAPIKey, "Angle Institute", from), nil
	default:
		slog.Warn("no mail backend configured, notifications are only logged")
		return notify.NewConsoleMailer(), nil
	}
}
