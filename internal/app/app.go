// Package app wires configuration, storage and services shared by the HTTP
// gateway and the revival cron binary.
package app

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/notice-suspension-api/internal/policy"
	"github.com/noah-isme/notice-suspension-api/internal/repository"
	"github.com/noah-isme/notice-suspension-api/internal/scheduler"
	"github.com/noah-isme/notice-suspension-api/internal/service"
	"github.com/noah-isme/notice-suspension-api/pkg/cache"
	"github.com/noah-isme/notice-suspension-api/pkg/config"
	"github.com/noah-isme/notice-suspension-api/pkg/database"
	"github.com/noah-isme/notice-suspension-api/pkg/lock"
)

const (
	cachePrefix = "notice-suspension"
	lockPrefix  = "notice-suspension:lock:"
)

// App holds every long-lived dependency.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	DB       *sqlx.DB
	MirrorDB *sqlx.DB
	Redis    *redis.Client
	Metrics  *service.MetricsService
	Policy   *policy.Policy

	Audit       *repository.AuditRepository
	Auth        *service.AuthService
	Reasons     *service.ReasonRegistry
	Suspensions *service.SuspensionService
	Revivals    *service.RevivalService
	AutoRevival *service.AutoRevivalService
	History     *service.HistoryService
	Reconcile   *service.ReconcileService
}

// New connects to storage and constructs the services. Redis and the mirror
// database are optional.
func New(cfg *config.Config, logr *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logr, Metrics: service.NewMetricsService()}

	p, err := loadPolicy(cfg.Suspension.PolicyFile)
	if err != nil {
		return nil, err
	}
	a.Policy = p

	a.DB, err = database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if cfg.MirrorDatabase.Enabled() {
		a.MirrorDB, err = database.NewPostgres(cfg.MirrorDatabase)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect mirror database: %w", err)
		}
	} else {
		logr.Warn("mirror database not configured, public mirror sync disabled")
	}

	var locker lock.Locker = lock.NewLocalLocker()
	var cacheRepo service.CacheRepository
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, using in-process lock and no reason cache", zap.Error(err))
		} else {
			a.Redis = client
			locker = lock.NewRedisLocker(client, lockPrefix, cfg.Suspension.LockTTL)
			cacheRepo = repository.NewCacheRepository(client, cachePrefix, logr)
		}
	}

	validate := validator.New()
	notices := repository.NewNoticeRepository(a.DB)
	events := repository.NewSuspendedNoticeRepository(a.DB)
	a.Audit = repository.NewAuditRepository(a.DB)

	cacheSvc := service.NewCacheService(cacheRepo, a.Metrics, cfg.Suspension.ReasonCacheTTL, logr, cacheRepo != nil)
	a.Reasons = service.NewReasonRegistry(repository.NewSuspensionReasonRepository(a.DB), p, cacheSvc, cfg.Suspension.ReasonCacheTTL, logr)

	opts := []service.SuspensionOption{
		service.WithTransactor(database.NewTransactor(a.DB)),
		service.WithLocker(locker),
		service.WithRefundRecorder(service.NewLogRefundRecorder(logr)),
		service.WithAudit(a.Audit),
		service.WithMetrics(a.Metrics),
	}
	if a.MirrorDB != nil {
		opts = append(opts, service.WithMirror(repository.NewMirrorRepository(a.MirrorDB)))
	}

	a.Suspensions = service.NewSuspensionService(notices, events, a.Reasons, p, validate, cfg.Suspension.DefaultRevivalDays, logr, opts...)
	a.Revivals = service.NewRevivalService(notices, events, p, service.NewNPDPatcher(p, cfg.Suspension.NPDPatchDays, nil), validate, logr, opts...)
	a.AutoRevival = service.NewAutoRevivalService(events, a.Revivals, a.Suspensions, repository.NewFurnishApplicationRepository(a.DB), p, logr,
		service.WithAutoRevivalMetrics(a.Metrics),
		service.WithPaymentWorkers(cfg.AutoRevival.PaymentWorkers, cfg.AutoRevival.PaymentBuffer),
	)
	a.History = service.NewHistoryService(events, logr, nil, nil)
	a.Reconcile = service.NewReconcileService(notices, events, p, logr)
	a.Auth = service.NewAuthService(validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	return a, nil
}

// Close releases connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.MirrorDB != nil {
		_ = a.MirrorDB.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func loadPolicy(path string) (*policy.Policy, error) {
	if path == "" {
		return policy.Default()
	}
	p, err := policy.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load suspension policy %s: %w", path, err)
	}
	return p, nil
}

// NewScheduler builds the expiry sweep schedule from config.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	spec := a.Config.AutoRevival.CronSpec
	if spec == "" {
		spec = scheduler.DefaultSpec
	}
	return scheduler.New(spec, a.AutoRevival, a.Logger)
}
