// comandero es el backend del bar: autenticación stateless con tokens
// firmados y cifrados, carta, mesas y pedidos en vivo por STOMP.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	rdb "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/comandero/internal/config"
	"github.com/dropDatabas3/comandero/internal/email"
	"github.com/dropDatabas3/comandero/internal/http/controllers"
	"github.com/dropDatabas3/comandero/internal/http/router"
	"github.com/dropDatabas3/comandero/internal/http/services"
	"github.com/dropDatabas3/comandero/internal/metrics"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/rate"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
	"github.com/dropDatabas3/comandero/internal/store/pg"
	"github.com/dropDatabas3/comandero/internal/ws"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "ruta del archivo de configuración")
	flag.Parse()

	// .env es opcional; las env vars del sistema pisan el YAML igual
	_ = godotenv.Load()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		// Logger todavía no inicializado
		panic("config: " + err.Error())
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		ServiceName: "comandero",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ===== STORAGE =====

	if cfg.Storage.Migrate {
		if err := pg.Migrate(ctx, cfg.Storage.DSN); err != nil {
			log.Fatal("migrations failed", logger.Err(err))
		}
		log.Info("migrations applied")
	}

	store, err := pg.New(ctx, pg.Config{
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.Postgres.MaxOpenConns,
		ConnMaxLifetime: config.MustDuration(cfg.Storage.Postgres.ConnMaxLifetime),
	})
	if err != nil {
		log.Fatal("postgres connect failed", logger.Err(err))
	}
	defer store.Close()

	// ===== AUTH CORE =====

	envOpts := envelope.Options{
		Secret: cfg.Auth.Token.Secret,
		Issuer: cfg.Auth.Token.Issuer,
		TTL:    cfg.TokenTTL(),
	}
	issuer := envelope.NewIssuer(envOpts)
	verifier := envelope.NewVerifier(envOpts)

	// ===== RATE LIMITING =====

	var loginLimiter, forgotLimiter rate.Limiter
	if cfg.Rate.Enabled {
		loginWindow := config.MustDuration(cfg.Rate.Login.Window)
		forgotWindow := config.MustDuration(cfg.Rate.Forgot.Window)

		if cfg.Rate.Redis.Addr != "" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			loginLimiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix+"login:", cfg.Rate.Login.Limit, loginWindow)
			forgotLimiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix+"forgot:", cfg.Rate.Forgot.Limit, forgotWindow)
			log.Info("rate limiting on redis", logger.String("addr", cfg.Rate.Redis.Addr))
		} else {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, loginWindow)
			forgotLimiter = rate.NewMemoryLimiter(cfg.Rate.Forgot.Limit, forgotWindow)
			log.Info("rate limiting in memory")
		}
	}

	// ===== SERVICES =====

	var mailer services.ResetMailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.Username, cfg.SMTP.Password)
	}

	hub := ws.NewHub()

	loginSvc := services.NewLoginService(services.LoginDeps{Users: store.Users(), Issuer: issuer})
	resetSvc := services.NewResetService(services.ResetDeps{
		Users:          store.Users(),
		Secret:         cfg.Auth.Reset.Secret,
		TTL:            cfg.ResetTTL(),
		Mailer:         mailer,
		BaseURL:        cfg.Email.BaseURL,
		DebugEchoLinks: cfg.Email.DebugEchoLinks,
	})
	usersSvc := services.NewUsersService(services.UsersDeps{Users: store.Users()})
	drinksSvc := services.NewDrinksService(services.DrinksDeps{Drinks: store.Drinks()})
	tablesSvc := services.NewTablesService(services.TablesDeps{Tables: store.Tables()})
	ordersSvc := services.NewOrdersService(services.OrdersDeps{
		Orders:   store.Orders(),
		Drinks:   store.Drinks(),
		Tables:   store.Tables(),
		Notifier: hub,
	})

	// ===== HTTP =====

	if cfg.Metrics.Enabled {
		if err := metrics.Register(nil); err != nil {
			log.Warn("metrics register failed", logger.Err(err))
		}
	}

	handler := router.New(router.Deps{
		Auth:          controllers.NewAuthController(loginSvc, resetSvc, cfg.Auth.Token.Header, cfg.Auth.Token.Prefix),
		Users:         controllers.NewUsersController(usersSvc),
		Drinks:        controllers.NewDrinksController(drinksSvc),
		Tables:        controllers.NewTablesController(tablesSvc),
		Orders:        controllers.NewOrdersController(ordersSvc),
		Verifier:      verifier,
		TokenHeader:   cfg.Auth.Token.Header,
		TokenPrefix:   cfg.Auth.Token.Prefix,
		LoginLimiter:  loginLimiter,
		ForgotLimiter: forgotLimiter,
		WSHandler: ws.NewHandler(hub, ws.HandlerConfig{
			Verifier: verifier,
			Header:   cfg.Auth.Token.Header,
			Prefix:   cfg.Auth.Token.Prefix,
		}),
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		MetricsEnabled:     cfg.Metrics.Enabled,
		Ping: func(r *http.Request) error {
			return store.Ping(r.Context())
		},
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  config.MustDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.MustDuration(cfg.Server.WriteTimeout),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", logger.Err(err))
		os.Exit(1)
	}
	log.Info("bye")
}
