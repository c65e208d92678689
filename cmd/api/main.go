package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ariefcatur/go-storefront/internal/auth"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/payment"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := newLogger(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pConfirmed := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicOrderConfirmed, 1024, log)
	pConfirmed.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, notify.TopicStatusChanged, 1024, log)
	pStatus.Start(ctx)

	dispatcher := &notify.Dispatcher{
		Confirmed:     pConfirmed,
		StatusChanged: pStatus,
		Service:       cfg.ServiceName,
	}

	catalogRepo := &catalog.Repo{DB: db}
	cartRepo := &cart.Repo{DB: db}
	orderRepo := &orders.Repo{DB: db}

	checkoutSvc := &checkout.Service{
		Validator:      &checkout.Validator{Products: catalogRepo},
		Gateway:        payment.Sandbox{},
		Store:          orderRepo,
		Events:         dispatcher,
		Log:            log,
		MaxItems:       cfg.CheckoutMaxItems,
		PaymentTimeout: cfg.PaymentTimeout,
	}

	router := httpx.NewRouter(log)
	router.Use(auth.Middleware(cfg.JWTSecret))

	(&httpx.CatalogHandler{Repo: catalogRepo, Log: log}).Register(router)
	(&httpx.CartHandler{Carts: cartRepo, Products: catalogRepo, Log: log}).Register(router)
	(&httpx.OrdersHandler{Checkout: checkoutSvc, Orders: orderRepo, Redis: rdb, Log: log}).Register(router)
	(&httpx.AdminHandler{Store: orderRepo, Dispatcher: dispatcher, Redis: rdb, Log: log}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info().Msg("shutting down")

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)

	pConfirmed.Close()
	pStatus.Close()
	pConfirmed.WaitClosed()
	pStatus.WaitClosed()
}

func newLogger(cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().Str("service", cfg.ServiceName).Logger()
}
