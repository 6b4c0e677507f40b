package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/PabloPavan/pharmaerp_api/docs"
	"github.com/PabloPavan/pharmaerp_api/internal/auth"
	"github.com/PabloPavan/pharmaerp_api/internal/config"
	"github.com/PabloPavan/pharmaerp_api/internal/customers"
	"github.com/PabloPavan/pharmaerp_api/internal/dashboard"
	"github.com/PabloPavan/pharmaerp_api/internal/db"
	"github.com/PabloPavan/pharmaerp_api/internal/departments"
	"github.com/PabloPavan/pharmaerp_api/internal/dosages"
	"github.com/PabloPavan/pharmaerp_api/internal/httpapi"
	"github.com/PabloPavan/pharmaerp_api/internal/items"
	"github.com/PabloPavan/pharmaerp_api/internal/pagecache"
	"github.com/PabloPavan/pharmaerp_api/internal/policy"
	"github.com/PabloPavan/pharmaerp_api/internal/ratelimit"
	"github.com/PabloPavan/pharmaerp_api/internal/salesorders"
	"github.com/PabloPavan/pharmaerp_api/internal/telemetry"
	"github.com/PabloPavan/pharmaerp_api/internal/token"
	"github.com/PabloPavan/pharmaerp_api/internal/users"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown := telemetry.InitTracer(config.ServiceName)
	defer shutdown(context.Background())
	shutdownMetrics := telemetry.InitMetrics(config.ServiceName)
	defer shutdownMetrics(context.Background())
	shutdownLogger := telemetry.InitLogger(config.ServiceName)
	defer shutdownLogger(context.Background())
	db.InitTelemetry(config.ServiceName)

	if cfg.MigrateOnStart {
		if err := db.MigrateUp(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrate error: %v", err)
		}
		log.Printf("migrations applied")
	}

	d, err := db.New(ctx, cfg.DatabaseURL, db.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer d.Close()

	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis url error: %v", err)
	}
	redisClient := redis.NewClient(redisOpt)
	defer redisClient.Close()

	dbBase := db.NewBase(d.Pool, cfg.DBQueryTimeout)
	itemLists := pagecache.New[items.Item](redisClient, "", "items", cfg.ListCacheTTL)
	usrRepo := users.NewRepository(dbBase)

	tokens := &token.Manager{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := &auth.Service{
		Users:        usrRepo,
		Tokens:       tokens,
		LoginLimiter: ratelimit.New(redisClient, cfg.LoginRateLimit, cfg.LoginRateWindow),
	}

	usersService := &users.Service{Store: usrRepo}
	if cfg.BootstrapAdminUsername != "" && cfg.BootstrapAdminPassword != "" {
		created, err := usersService.EnsureAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword)
		if err != nil {
			log.Fatalf("bootstrap admin error: %v", err)
		}
		if created {
			log.Printf("bootstrap admin %q created", cfg.BootstrapAdminUsername)
		}
	}

	telemetry.InitAppMetrics(config.ServiceName, d.Pool, redisClient)

	app := &httpapi.App{
		ServiceName: config.ServiceName,
		Health: &httpapi.HealthHandler{
			DB: d.Pool,
			Redis: httpapi.RedisPinger(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
		Auth:        &httpapi.AuthHandler{Service: authService},
		Users:       &httpapi.UsersHandler{Service: usersService},
		Departments: &httpapi.DepartmentsHandler{Service: &departments.Service{Store: departments.NewRepository(dbBase)}},
		Dosages: &httpapi.DosagesHandler{Service: &dosages.Service{
			Store:     dosages.NewRepository(dbBase),
			ItemLists: itemLists,
		}},
		Customers: &httpapi.CustomersHandler{Service: &customers.Service{
			Store: customers.NewRepository(dbBase),
			Cache: pagecache.New[customers.Customer](redisClient, "", "customers", cfg.ListCacheTTL),
		}},
		Items: &httpapi.ItemsHandler{Service: &items.Service{
			Store: items.NewRepository(dbBase),
			Cache: itemLists,
		}},
		SalesOrders: &httpapi.SalesOrdersHandler{Service: &salesorders.Service{Store: salesorders.NewRepository(dbBase)}},
		Dashboard:   &httpapi.DashboardHandler{Service: &dashboard.Service{Store: dashboard.NewRepository(dbBase)}},

		Authenticator: authService,
		AuthOptions: httpapi.AuthOptions{
			Policy:          policy.Default(),
			LoginURL:        cfg.LoginURL,
			UnauthorizedURL: cfg.UnauthorizedURL,
		},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		SwaggerEnabled:     cfg.SwaggerEnabled,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("api listening on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	case <-ctx.Done():
		log.Printf("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
