package main

import (
	"context"
	"flag"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/fluttalk/fluttalk-server/internal/config"
	"github.com/fluttalk/fluttalk-server/internal/infra/cache"
	"github.com/fluttalk/fluttalk-server/internal/infra/database"
	"github.com/fluttalk/fluttalk-server/internal/infra/gateway"
	"github.com/fluttalk/fluttalk-server/internal/infra/repository"
	"github.com/fluttalk/fluttalk-server/internal/present/rest"
	authmiddleware "github.com/fluttalk/fluttalk-server/internal/present/rest/middleware"
	"github.com/fluttalk/fluttalk-server/internal/service"
	"github.com/fluttalk/fluttalk-server/internal/usecase"
)

const tokenCacheTTLSeconds = 600

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	if conf.Server.EnableTrace {
		cleanup, err := setupTrace(conf.Server.TraceEndpoint)
		if err != nil {
			panic("failed to set up tracing: " + err.Error())
		}
		defer cleanup()
	}

	db, err := database.NewPostgres(conf.Server.PostgresDsn)
	if err != nil {
		panic("failed to connect database")
	}
	if err := database.MigratePostgres(db); err != nil {
		panic("failed to migrate database")
	}

	rdb := database.NewRedis(conf.Server.RedisAddr, conf.Server.RedisPassword, conf.Server.RedisDB)

	var tokenCache usecase.TokenCache
	if conf.Server.MemcachedAddr != "" {
		mc := database.NewMemcached(conf.Server.MemcachedAddr)
		tokenCache = cache.NewMemcachedTokenCache(mc, tokenCacheTTLSeconds)
	}

	store := repository.NewDocumentRepository(db)
	identity := gateway.NewIdentityGateway(conf.Identity.BaseURL)
	transport := gateway.NewFCMGateway(conf.Push.Endpoint, conf.Push.ServerKey)

	dispatcher := usecase.NewDispatcher(store, transport, tokenCache)
	chatUC := usecase.NewChatUsecase(store, identity)
	messageUC := usecase.NewMessageUsecase(store, dispatcher)
	tokenUC := usecase.NewTokenUsecase(store, tokenCache)
	userUC := usecase.NewUserUsecase(store, identity)

	auth := service.NewAuthService(identity, rdb)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(otelecho.Middleware("fluttalk"))

	handler := rest.NewHandler(chatUC, messageUC, tokenUC, userUC)
	handler.RegisterRoutes(e, authmiddleware.NewAuthMiddleware(auth).RequireIdentity)

	slog.Info("starting fluttalk server",
		slog.String("addr", conf.Server.ListenAddr),
	)
	e.Logger.Fatal(e.Start(conf.Server.ListenAddr))
}

func setupTrace(endpoint string) (func(), error) {
	ctx := context.Background()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName("fluttalk"),
		)),
	)
	otel.SetTracerProvider(provider)

	return func() {
		if err := provider.Shutdown(ctx); err != nil {
			slog.Error("failed to shut down trace provider",
				slog.String("error", err.Error()),
			)
		}
	}, nil
}
