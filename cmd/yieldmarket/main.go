package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"yieldmarket/internal/address"
	"yieldmarket/internal/auth"
	"yieldmarket/internal/cache"
	"yieldmarket/internal/config"
	cronrunner "yieldmarket/internal/cron"
	"yieldmarket/internal/db"
	"yieldmarket/internal/events"
	"yieldmarket/internal/handler"
	"yieldmarket/internal/ledger"
	"yieldmarket/internal/logger"
	"yieldmarket/internal/paas"
	"yieldmarket/internal/repository"
	gormrepository "yieldmarket/internal/repository/gorm"
	memoryrepository "yieldmarket/internal/repository/memory"
	"yieldmarket/internal/service"

	_ "yieldmarket/docs"
)

func main() {
	cfgPath := os.Getenv("YM_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("YM_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	// yieldmarket token <address> [role] prints a bearer token for local use.
	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := issueToken(cfg.Auth, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var (
		store  repository.Repository
		dbConn *db.DB
	)
	if db.UsesMemory(cfg.DB) {
		logger.Warn("ledger running on in-memory store; state is lost on exit")
		store = memoryrepository.New()
	} else {
		dbConn, err = db.Open(cfg.DB)
		if err != nil {
			logger.Fatal("db open failed", zap.Error(err))
		}
		defer db.Close(dbConn)

		if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
			logger.Warn("failed to set timezone", zap.Error(err))
		}
		if err := db.AutoMigrate(dbConn); err != nil {
			logger.Fatal("auto-migrate failed", zap.Error(err))
		}
		store = gormrepository.New(dbConn.Gorm)
	}

	namespace := address.Zero
	if ns := strings.TrimSpace(cfg.Ledger.Namespace); ns != "" {
		if namespace, err = address.Parse(ns); err != nil {
			logger.Fatal("invalid ledger namespace", zap.Error(err))
		}
	}
	admins, err := service.ParseAdmins(cfg.Ledger.Admins)
	if err != nil {
		logger.Fatal("invalid ledger admins", zap.Error(err))
	}
	if len(admins) == 0 {
		logger.Warn("no ledger admins configured; assets and strategies can only come from config")
	}

	strategyCache, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}
	var cachePinger handler.Pinger
	if rs, ok := strategyCache.(*cache.RedisStore); ok {
		cachePinger = rs
		defer rs.Close()
	}

	hub := events.NewHub()
	core := service.Core{
		Repo:      store,
		Logger:    logger,
		Clock:     ledger.SystemClock{},
		Addresses: address.Deriver{Namespace: namespace},
		Events:    hub,
		Admins:    admins,
	}

	settingsSvc := &service.SystemSettingsService{Repo: store, Clock: core.Clock}
	if err := settingsSvc.EnsureDefaultSwitches(context.Background()); err != nil {
		logger.Warn("init default system switches failed", zap.Error(err))
	}
	assetSvc := &service.AssetService{Core: core}
	if err := assetSvc.SeedAssets(context.Background(), cfg.Ledger.Assets); err != nil {
		logger.Fatal("seed assets failed", zap.Error(err))
	}
	poolSvc := &service.PoolService{Core: core}
	strategySvc := &service.StrategyService{
		Core:            core,
		Cache:           strategyCache,
		CacheTTL:        cfg.Cache.StrategyTTL,
		MaxRewardAPYBps: cfg.Ledger.MaxRewardAPYBps,
		DefaultMaturity: cfg.Ledger.DefaultMaturity,
	}
	poolSvc.Catalog = strategySvc
	yieldSvc := &service.YieldService{Core: core, Catalog: strategySvc}
	marketSvc := &service.MarketplaceService{Core: core, ListingTTL: cfg.Marketplace.ListingTTL, Flags: settingsSvc}
	auditSvc := &service.AuditService{Core: core, Flags: settingsSvc}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	if cfg.Auth.Disabled {
		logger.Warn("auth disabled; the X-Actor header is trusted as the caller")
	}
	jwtCfg := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), Issuer: cfg.Auth.Issuer, TokenTTL: cfg.Auth.TokenTTL}
	engine.Use(auth.Middleware(jwtCfg, cfg.Auth.Disabled))

	paasClient := initPaaSClient(cfg.PaaS, logger)
	engine.Use(paas.InjectClientMiddleware(paasClient))
	engine.Use(paas.WriteAuditMiddleware(paasClient, auth.ActorString, logger))

	healthHandler := &handler.HealthHandler{Cache: cachePinger}
	if dbConn != nil {
		healthHandler.DB = dbConn.Gorm
	}
	healthHandler.Register(engine)
	paas.RegisterDocs(engine)

	(&handler.AssetHandler{Assets: assetSvc, Logger: logger}).Register(engine)
	(&handler.PoolHandler{Pools: poolSvc, Assets: assetSvc, Yield: yieldSvc, Logger: logger}).Register(engine)
	(&handler.StrategyHandler{Strategies: strategySvc, Logger: logger}).Register(engine)
	(&handler.DepositHandler{Yield: yieldSvc, Logger: logger}).Register(engine)
	(&handler.ListingHandler{Market: marketSvc, Assets: assetSvc, Logger: logger}).Register(engine)
	(&handler.AuditHandler{Audit: auditSvc, Repo: store, Logger: logger}).Register(engine)
	(&handler.SystemSettingsHandler{Repo: store, Settings: settingsSvc, Admins: admins, Logger: logger}).Register(engine)
	(&events.StreamHandler{
		Hub:    hub,
		Logger: logger,
		Enabled: func(ctx context.Context) bool {
			return settingsSvc.IsEnabled(ctx, service.FeatureEventStream, true)
		},
	}).Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	baseCtx := ctx
	if paasClient != nil {
		baseCtx = paas.WithClient(ctx, paasClient)
	}

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, baseCtx)
		jobs := []cronrunner.Job{
			{
				Name: "invariant_audit",
				Spec: cfg.Cron.Audit,
				Run: func(ctx context.Context) error {
					report, err := auditSvc.RunOnce(ctx)
					if err != nil || report == nil {
						return err
					}
					if !report.OK() {
						paas.LogBestEffortCtx(ctx, "yieldmarket_audit_findings", "error", map[string]any{
							"findings": len(report.Findings),
							"checks":   findingChecks(report),
						})
					}
					return nil
				},
			},
			{
				Name: "listing_expiry",
				Spec: cfg.Cron.ListingExpiry,
				Run: func(ctx context.Context) error {
					_, err := marketSvc.ExpireListings(ctx)
					return err
				},
			},
		}
		for _, job := range jobs {
			if _, err := cronRunner.Add(job); err != nil {
				logger.Warn("cron register failed", zap.String("job", job.Name), zap.Error(err))
			}
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func findingChecks(report *service.AuditReport) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, f := range report.Findings {
		if !seen[f.Check] {
			seen[f.Check] = true
			out = append(out, f.Check)
		}
	}
	return out
}

func issueToken(cfg config.AuthConfig, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: yieldmarket token <address> [role]")
	}
	actor, err := address.Parse(args[0])
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}
	role := ""
	if len(args) > 1 {
		role = args[1]
	}
	j := auth.JWT{Secret: []byte(cfg.JWTSecret), Issuer: cfg.Issuer, TokenTTL: cfg.TokenTTL}
	token, expiresAt, err := j.Issue(actor, role)
	if err != nil {
		return err
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,"+auth.ActorHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func initPaaSClient(cfg config.PaaSConfig, logger *zap.Logger) *paas.Client {
	p := paas.NewClient(cfg)
	if p == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Login(ctx); err != nil {
		logger.Warn("paas login failed (logs disabled)", zap.Error(err))
		return nil
	}
	logger.Info("paas login ok")
	return p
}
