package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pos/internal/clock"
	"pos/internal/config"
	httpapi "pos/internal/http"
	"pos/internal/repository"
	"pos/internal/repository/postgres"
	"pos/internal/service"
	"pos/migrations"

	_ "pos/docs"
)

// stores набор репозиториев выбранного драйвера
type stores struct {
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	salespersons repository.SalespersonRepository
	tickets      repository.TicketRepository
	sales        repository.SaleRepository
	tx           repository.TxManager
	close        func()
}

// @title POS API
// @version 1.0
// @description Point of sale: inventory, customers, salespersons, checkout sessions and receipts.
// @BasePath /api/v1
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setLogLevel(cfg.LogLevel)
	log.Info().Str("appName", cfg.AppName).Str("store", cfg.StoreDriver).Msg("application starting")

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	st, err := openStores(startupCtx, cfg)
	if err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.close()

	salespersonsSvc := service.NewSalespersonService(st.salespersons)
	if n, err := salespersonsSvc.Seed(startupCtx, cfg.Salespersons()); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("failed to seed salespersons")
	} else if n > 0 {
		log.Info().Int("count", n).Msg("salespersons seeded")
	}
	cancel()

	checkouts := service.NewCheckoutService(service.CheckoutDeps{
		Products:     st.products,
		Customers:    st.customers,
		Salespersons: st.salespersons,
		Tickets:      st.tickets,
		Sales:        st.sales,
		Tx:           st.tx,
		Clock:        clock.NewSystem(),
	})
	sessions := service.NewSessionRegistry(checkouts, service.WithIdleTTL(cfg.SessionIdleTTL))
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.Run(sweepCtx, cfg.SessionSweepInterval)

	srv := httpapi.NewServer(httpapi.Services{
		Products:     service.NewProductService(st.products),
		Customers:    service.NewCustomerService(st.customers),
		Salespersons: salespersonsSvc,
		Tickets:      service.NewTicketService(st.tickets, st.sales),
		Sessions:     sessions,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		srvErr <- httpServer.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
		}
	case <-stopCtx.Done():
		log.Info().Msg("shutdown signal received, stopping server")
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := repository.NewMemoryStore()
		return stores{
			products:     store,
			customers:    repository.NewMemoryCustomers(store),
			salespersons: repository.NewMemorySalespersons(store),
			tickets:      repository.NewMemoryTickets(store),
			sales:        repository.NewMemorySales(store),
			tx:           repository.NewMemoryTx(store),
			close:        func() {},
		}, nil
	}

	log.Info().Msg("connecting to database")
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return stores{}, err
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return stores{}, err
	}
	return stores{
		products:     postgres.NewProductRepository(pool),
		customers:    postgres.NewCustomerRepository(pool),
		salespersons: postgres.NewSalespersonRepository(pool),
		tickets:      postgres.NewTicketRepository(pool),
		sales:        postgres.NewSaleRepository(pool),
		tx:           postgres.NewTxManager(pool),
		close: func() {
			log.Info().Msg("closing database connection")
			pool.Close()
		},
	}, nil
}
