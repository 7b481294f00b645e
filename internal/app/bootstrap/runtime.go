package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	cacheadapter "github.com/prof-ramos/asof-site/internal/adapters/cache"
	eventadapter "github.com/prof-ramos/asof-site/internal/adapters/events"
	httpadapter "github.com/prof-ramos/asof-site/internal/adapters/http"
	"github.com/prof-ramos/asof-site/internal/adapters/imaging"
	mailadapter "github.com/prof-ramos/asof-site/internal/adapters/mail"
	"github.com/prof-ramos/asof-site/internal/adapters/observability"
	"github.com/prof-ramos/asof-site/internal/adapters/postgres"
	"github.com/prof-ramos/asof-site/internal/adapters/scheduler"
	"github.com/prof-ramos/asof-site/internal/adapters/security"
	"github.com/prof-ramos/asof-site/internal/adapters/storage"
	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/ports"
)

const publishDuePostsJob = "publish_due_posts"

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	service    *application.Service
	metrics    *observability.Metrics
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server
	outboxRepo ports.OutboxRepository
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	trustedProxies, err := httpadapter.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("parse TRUSTED_PROXIES: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).
		With("service", cfg.ServiceID)
	slog.SetDefault(logger)
	logger.Info("bootstrapping asof site", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort, "blob_backend", cfg.BlobBackend)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	closeStores := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	repos := postgres.NewRepositories(pool)
	tokenSigner, err := security.NewJWTSigner(cfg.JWTKeyID, cfg.JWTPrivateKeyPEM, cfg.JWTPublicKeyPEM)
	if err != nil {
		if !cfg.AllowEphemeralJWT {
			closeStores()
			return nil, fmt.Errorf("init jwt signer: %w", err)
		}
		logger.Warn("using ephemeral JWT keys for local/dev runtime")
		tokenSigner, err = security.NewEphemeralJWTSigner(cfg.JWTKeyID)
		if err != nil {
			closeStores()
			return nil, fmt.Errorf("init ephemeral jwt signer: %w", err)
		}
	}

	blobs, uploadsDir, err := newBlobStore(cfg)
	if err != nil {
		closeStores()
		return nil, fmt.Errorf("init blob store: %w", err)
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			TokenTTL:             cfg.TokenTTL,
			SessionTTL:           cfg.SessionTTL,
			FailedLoginThreshold: cfg.FailedThreshold,
			LockoutDuration:      cfg.LockoutDuration,
			LoginIPThreshold:     cfg.LoginIPThreshold,
			LoginIPWindow:        cfg.LoginIPWindow,
			MaxUploadBytes:       cfg.MaxUploadBytes,
			ThumbnailWidth:       cfg.ThumbnailWidth,
			PublicCacheTTL:       cfg.PublicCacheTTL,
			DuePostsBatch:        cfg.DuePostsBatch,
			ContactInbox:         cfg.ContactInbox,
			SiteName:             cfg.SiteName,
		},
		Users:         repos.Users,
		Sessions:      repos.Sessions,
		LoginAttempts: repos.LoginAttempts,
		Posts:         repos.Posts,
		Media:         repos.Media,
		Events:        repos.Events,
		Pages:         repos.Pages,
		Transparency:  repos.Transparency,
		Contacts:      repos.Contacts,
		Outbox:        repos.Outbox,
		Lockouts:      cacheadapter.NewRedisLockoutStore(redisClient),
		Revocations:   cacheadapter.NewRedisSessionRevocationStore(redisClient),
		Cache:         cacheadapter.NewRedisContentCache(redisClient),
		Blobs:         blobs,
		Thumbnailer:   imaging.NewThumbnailer(cfg.ThumbnailQuality),
		Sanitizer:     security.NewHTMLSanitizer(),
		Hasher:        security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner:   tokenSigner,
	})

	if cfg.BootstrapAdminEmail != "" {
		created, err := svc.BootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, cfg.BootstrapAdminName)
		if err != nil {
			closeStores()
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", "email", cfg.BootstrapAdminEmail)
		}
	}

	metrics := observability.NewMetrics()
	handler := httpadapter.NewHandler(svc, metrics, httpadapter.Options{
		CookieName:     cfg.CookieName,
		CookieSecure:   cfg.CookieSecure,
		MaxUploadBytes: cfg.MaxUploadBytes,
		UploadsDir:     uploadsDir,
		ContactRate:    rate.Limit(cfg.ContactRatePerMinute / 60),
		ContactBurst:   cfg.ContactBurst,
		TrustedProxies: trustedProxies,
		Ready: func(ctx context.Context) error {
			if err := postgres.Ping(ctx, pool); err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			if err := redisClient.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
			return nil
		},
	})
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           httpadapter.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthSrv)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		service:    svc,
		metrics:    metrics,
		httpServer: httpServer,
		grpcServer: grpcServer,
		health:     healthSrv,
		outboxRepo: repos.Outbox,
		cleanupFn: func(context.Context) {
			closeStores()
		},
	}, nil
}

func newBlobStore(cfg Config) (ports.BlobStore, string, error) {
	if cfg.BlobBackend == "azure" {
		store, err := storage.NewAzureStore(storage.AzureConfig{
			AccountURL:       cfg.AzureAccountURL,
			ConnectionString: cfg.AzureConnectionString,
			Container:        cfg.AzureContainer,
			PublicBaseURL:    cfg.AzurePublicBaseURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}
	store, err := storage.NewLocalStore(cfg.LocalBlobDir, "/uploads")
	if err != nil {
		return nil, "", err
	}
	return store, store.Root(), nil
}

// newPublisher builds the worker's delivery chain: contact notifications by
// mail, then Kafka when brokers are configured, otherwise the log.
func (r *Runtime) newPublisher() (ports.EventPublisher, func(), error) {
	var (
		next    ports.EventPublisher = eventadapter.NewLoggingPublisher(r.logger)
		closeFn                      = func() {}
	)
	if len(r.cfg.KafkaBrokers) > 0 {
		kafka, err := eventadapter.NewKafkaPublisher(r.cfg.KafkaBrokers, r.cfg.KafkaTopics, r.cfg.KafkaTopicPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		next = kafka
		closeFn = func() { _ = kafka.Close() }
	}

	var mailer ports.Mailer = mailadapter.NewLogMailer(r.logger)
	if r.cfg.SMTPHost != "" {
		smtp, err := mailadapter.NewSMTPMailer(mailadapter.SMTPConfig{
			Host:       r.cfg.SMTPHost,
			Port:       r.cfg.SMTPPort,
			Username:   r.cfg.SMTPUsername,
			Password:   r.cfg.SMTPPassword,
			From:       r.cfg.SMTPFrom,
			RequireTLS: r.cfg.SMTPRequireTLS,
		})
		if err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("init smtp mailer: %w", err)
		}
		mailer = smtp
	} else {
		r.logger.Warn("SMTP_HOST not set; contact notifications are only logged")
	}
	return eventadapter.NewContactNotifier(r.logger, mailer, next), closeFn, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	r.health.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return runErr
}

// RunWorker drives the outbox relay and the scheduled-publication job until
// the process is signalled.
func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		r.cleanupFn(shutdownCtx)
	}()

	publisher, closePublisher, err := r.newPublisher()
	if err != nil {
		return err
	}
	defer closePublisher()

	location, err := time.LoadLocation(r.cfg.SchedulerTimezone)
	if err != nil {
		r.logger.Warn("unknown scheduler timezone, using UTC", "timezone", r.cfg.SchedulerTimezone, "error", err)
		location = time.UTC
	}
	sched := scheduler.New(r.logger, r.metrics, location, time.Minute)
	if err := sched.Add(ctx, publishDuePostsJob, r.cfg.PublishCron, r.service.PublishDuePosts); err != nil {
		return err
	}

	outbox := eventadapter.NewOutboxWorker(r.logger, r.outboxRepo, publisher, r.metrics, eventadapter.OutboxWorkerConfig{
		Interval:   r.cfg.OutboxPollInterval,
		BatchSize:  r.cfg.OutboxBatchSize,
		ClaimTTL:   r.cfg.OutboxClaimTTL,
		MaxRetries: r.cfg.OutboxMaxRetries,
	})

	r.logger.Info("worker started", "publish_cron", r.cfg.PublishCron, "kafka", len(r.cfg.KafkaBrokers) > 0)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return outbox.Run(groupCtx) })
	group.Go(func() error { return sched.Run(groupCtx) })
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
