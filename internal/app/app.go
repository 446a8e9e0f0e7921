package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"go.uber.org/zap"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/handler"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/api/http/route"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/config"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/msg/outbox"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/repository"
	"github.com/CyberXLTR/CyberXLTR-Admin/internal/service"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/jwt"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/mailer"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/postgres"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/redis"
	"github.com/CyberXLTR/CyberXLTR-Admin/pkg/server"
)

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	Service    *Service
	Sync       *Sync
	DB         postgres.Postgres
	RDB        redis.Redis
	HTTPServer server.HTTPServer
}

type Repository struct {
	HealthRepository       *repository.HealthRepository
	OrganizationRepository *repository.OrganizationRepository
	UserRepository         *repository.UserRepository
	MembershipRepository   *repository.MembershipRepository
	NotificationRepository *repository.NotificationRepository
	SyncEventRepository    *repository.SyncEventRepository
}

type Service struct {
	HealthService       *service.HealthService
	AuthService         *service.AuthService
	OrganizationService *service.OrganizationService
	UserService         *service.UserService
	NotificationService *service.NotificationService
	SyncService         *service.SyncService
}

// Sync groups the outbox components shared by every mutating service.
type Sync struct {
	Dispatcher *outbox.Dispatcher
	Syncer     *outbox.Syncer
	Retrier    *outbox.Retrier
}

type Security struct {
	PrivateKey *ecdsa.PrivateKey
	PublicKey  *ecdsa.PublicKey
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rdb, err := initRedis(&cfg.Redis)
	if err != nil {
		db.Close()
		log.Error("Failed to initialize redis", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize redis: %w", err)
	}

	sec, err := initSecurity(log, cfg.Key)
	if err != nil {
		db.Close()
		_ = rdb.Close()
		log.Error("Failed to initialize security", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize security: %w", err)
	}

	mlr := initMailer(log, &cfg.Mailer)

	repo := initRepository(log, db)

	syncCore := initSync(log, &cfg.Sync, repo, mlr)

	svc := initService(log, cfg, sec, repo, rdb, syncCore)

	syncCore.Retrier = outbox.NewRetrier(log, outbox.RetrierConfig{
		Enabled:  cfg.Sync.AutoRetry.Enabled,
		Interval: cfg.Sync.AutoRetry.Interval,
	}, svc.SyncService, outbox.WithGate(syncCore.Dispatcher))

	httpServer := initHTTPServer(log, cfg, sec.PublicKey, svc)

	return &App{
		Cfg:        cfg,
		Log:        log,
		Service:    svc,
		Sync:       syncCore,
		DB:         db,
		RDB:        rdb,
		HTTPServer: httpServer,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}
	return app
}

func (a *App) Run(ctx context.Context) error {
	errs := make(chan error, 1)

	go func() {
		if err := a.HTTPServer.Run(); err != nil {
			errs <- err
		}
	}()

	go a.Sync.Retrier.Run(ctx)

	a.Log.Info("Application started",
		zap.Uint16("port", a.Cfg.HTTPServer.Port),
		zap.Bool("sync_enabled", a.Sync.Dispatcher.Enabled()),
		zap.String("sync_target", a.Sync.Dispatcher.TargetURL()),
	)

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		return nil
	}
}

func (a *App) Shutdown() error {
	err := apperrors.ErrShutdown

	if srvErr := a.HTTPServer.Shutdown(); srvErr != nil {
		err = fmt.Errorf("%w, failed to shutdown http server: %w", err, srvErr)
	}

	a.Log.Debug("Http server shutdown")

	a.DB.Close()
	a.Log.Debug("Database closed")

	if rdbErr := a.RDB.Close(); rdbErr != nil {
		err = fmt.Errorf("%w, failed to close RDB: %w", err, rdbErr)
	}

	a.Log.Debug("Redis closed")

	if err != apperrors.ErrShutdown { //nolint:errorlint // wrapped only when a step failed
		return err
	}

	return nil
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	db, err := postgres.New(postgresCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func initRedis(cfg *config.Redis) (redis.Redis, error) {
	redisCfg := &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	rdb, err := redis.New(redisCfg)
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func initMailer(log *zap.Logger, cfg *config.Mailer) mailer.Mailer {
	mailerCfg := &mailer.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
		UseTLS:   cfg.UseTLS,
	}

	mlr := mailer.New(mailerCfg)
	log.Debug("Mailer initialized")
	return mlr
}

func initSecurity(log *zap.Logger, cfg config.Key) (*Security, error) {
	privateKey, err := jwt.LoadECDSAPrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	log.Debug("Private key loaded")

	publicKey, err := jwt.LoadECDSAPublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	log.Debug("Public key loaded")

	return &Security{
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}, nil
}

func initRepository(log *zap.Logger, db postgres.Postgres) *Repository {
	healthRepo := repository.NewHealthRepository(db.Pool())
	log.Debug("Health repository initialized")

	orgRepo := repository.NewOrganizationRepository(db.Pool())
	log.Debug("Organization repository initialized")

	userRepo := repository.NewUserRepository(db.Pool())
	log.Debug("User repository initialized")

	membershipRepo := repository.NewMembershipRepository(db.Pool())
	log.Debug("Membership repository initialized")

	notificationRepo := repository.NewNotificationRepository(db.Pool())
	log.Debug("Notification repository initialized")

	syncEventRepo := repository.NewSyncEventRepository(db.Pool())
	log.Debug("Sync event repository initialized")

	return &Repository{
		HealthRepository:       healthRepo,
		OrganizationRepository: orgRepo,
		UserRepository:         userRepo,
		MembershipRepository:   membershipRepo,
		NotificationRepository: notificationRepo,
		SyncEventRepository:    syncEventRepo,
	}
}

func initSync(log *zap.Logger, cfg *config.Sync, repo *Repository, mlr mailer.Mailer) *Sync {
	var clientOpts []outbox.ClientOption
	if cfg.Breaker.Enabled {
		clientOpts = append(clientOpts, outbox.WithBreaker(outbox.BreakerConfig{
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.Breaker.OpenTimeout,
			HalfOpenRequests:    cfg.Breaker.HalfOpenRequests,
		}))
	}

	client := outbox.NewClient(log, cfg.ServiceURL, cfg.APIKey, cfg.TimeoutDuration(), clientOpts...)
	recorder := outbox.NewRecorder(log, repo.SyncEventRepository, cfg.StoreWriteTimeout)

	var dispatcherOpts []outbox.DispatcherOption
	if len(cfg.Alert.Recipients) > 0 {
		dispatcherOpts = append(dispatcherOpts, outbox.WithAlerter(outbox.NewMailAlerter(log, mlr, cfg.Alert.Recipients, cfg.Alert.Cooldown)))
	}

	dispatcher := outbox.NewDispatcher(log, outbox.Config{
		Enabled:    cfg.Enabled,
		BaseURL:    cfg.ServiceURL,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelayDuration(),
	}, client, recorder, dispatcherOpts...)

	log.Debug("Sync dispatcher initialized",
		zap.Bool("enabled", cfg.Enabled),
		zap.Bool("breaker", cfg.Breaker.Enabled),
		zap.Int("alert_recipients", len(cfg.Alert.Recipients)),
	)

	return &Sync{
		Dispatcher: dispatcher,
		Syncer:     outbox.NewSyncer(log, dispatcher),
	}
}

func initService(
	log *zap.Logger,
	cfg *config.Config,
	sec *Security,
	repo *Repository,
	rdb redis.Redis,
	syncCore *Sync,
) *Service {
	healthSvc := service.NewHealthService(log, repo.HealthRepository, cfg.App.ServiceName, cfg.App.Version)
	log.Debug("Health service initialized")

	authSvc := service.NewAuthService(log, sec.PrivateKey, repo.UserRepository, rdb, service.TokenConfig{
		Issuer:          cfg.HTTPServer.JWT.Issuer,
		Audience:        cfg.HTTPServer.JWT.Audience,
		AccessTokenTTL:  cfg.HTTPServer.JWT.AccessTokenTTL,
		RefreshTokenTTL: cfg.HTTPServer.JWT.RefreshTokenTTL,
	}, cfg.Admin.Emails)
	log.Debug("Auth service initialized")

	orgSvc := service.NewOrganizationService(log, repo.OrganizationRepository, syncCore.Syncer)
	log.Debug("Organization service initialized")

	userSvc := service.NewUserService(log, repo.UserRepository, repo.MembershipRepository, repo.OrganizationRepository,
		syncCore.Syncer, cfg.Admin.Emails)
	log.Debug("User service initialized")

	notificationSvc := service.NewNotificationService(log, repo.NotificationRepository)
	log.Debug("Notification service initialized")

	syncSvc := service.NewSyncService(log, service.SyncConfig{
		BulkConcurrency: cfg.Sync.BulkConcurrency,
		BulkLockTTL:     cfg.Sync.BulkLockTTL,
	},
		repo.SyncEventRepository,
		repo.OrganizationRepository,
		repo.UserRepository,
		repo.MembershipRepository,
		syncCore.Dispatcher,
		syncCore.Syncer,
		redis.NewLocker(rdb),
	)
	log.Debug("Sync service initialized")

	return &Service{
		HealthService:       healthSvc,
		AuthService:         authSvc,
		OrganizationService: orgSvc,
		UserService:         userSvc,
		NotificationService: notificationSvc,
		SyncService:         syncSvc,
	}
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, publicKey *ecdsa.PublicKey, svc *Service) server.HTTPServer {
	router := route.SetupRouter(log, cfg, publicKey, route.Handlers{
		Health:       handler.NewHealthHandler(log, svc.HealthService),
		Auth:         handler.NewAuthHandler(log, svc.AuthService, cfg.HTTPServer.JWT.AccessTokenTTL, cfg.HTTPServer.JWT.RefreshTokenTTL),
		Organization: handler.NewOrganizationHandler(log, svc.OrganizationService),
		User:         handler.NewUserHandler(log, svc.UserService),
		Notification: handler.NewNotificationHandler(log, svc.NotificationService),
		Sync:         handler.NewSyncHandler(log, svc.SyncService),
	})

	log.Debug("Router initialized")

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)

	return httpServer
}
