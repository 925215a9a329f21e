// Storefront server - serves the cart, selection and checkout RPCs over
// gRPC and the staff order API over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/growteq/storefront/admin"
	"github.com/growteq/storefront/api"
	"github.com/growteq/storefront/catalog"
	"github.com/growteq/storefront/checkout"
	"github.com/growteq/storefront/config"
	"github.com/growteq/storefront/docstore"
	"github.com/growteq/storefront/localstore"
	"github.com/growteq/storefront/messaging"
	"github.com/growteq/storefront/order"
	"github.com/growteq/storefront/session"
	"github.com/growteq/storefront/storefront"
)

const serviceName = "storefront"

// backend is the document store behind both the catalog and the orders.
type backend interface {
	catalog.Source
	order.Repository
	Seed(ctx context.Context, src catalog.Source) error
}

func main() {
	envFile := pflag.String("env-file", "", "load environment variables from this file first")
	port := pflag.String("port", "", "gRPC port (overrides PORT)")
	adminPort := pflag.String("admin-port", "", "staff HTTP port (overrides ADMIN_PORT)")
	dataDir := pflag.String("data-dir", "", "local storage directory (overrides DATA_DIR, empty keeps it in memory)")
	seed := pflag.Bool("seed", false, "seed the document store with the built-in catalog")
	pflag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *adminPort != "" {
		cfg.AdminPort = *adminPort
	}
	if pflag.CommandLine.Changed("data-dir") {
		cfg.DataDir = *dataDir
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *seed, logger); err != nil {
		logger.Fatal("storefront stopped", zap.Error(err))
	}
	logger.Info("storefront stopped")
}

func run(ctx context.Context, cfg *config.Config, seed bool, logger *zap.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var local localstore.Store = localstore.NewMemoryStore()
	if cfg.DataDir != "" {
		fs, err := localstore.NewFileStore(cfg.DataDir)
		if err != nil {
			return err
		}
		local = fs
	}

	docs, err := openBackend(ctx, cfg, seed, logger)
	if err != nil {
		return err
	}

	ix := catalog.NewIndex(docs, local, catalog.Config{
		TTL:          cfg.CatalogCacheTTL,
		FetchTimeout: cfg.RemoteTimeout,
		Logger:       logger.Named("catalog"),
	})
	defer ix.Close()
	go preload(ctx, ix, cfg.RemoteTimeout, logger)

	sessions, err := session.NewRegistry(local, cfg.SessionCapacity, logger.Named("session"))
	if err != nil {
		return err
	}
	defer sessions.Close()

	var sender messaging.Sender = messaging.NewLogSender(logger.Named("messaging"))
	if len(cfg.KafkaBrokers) > 0 {
		relay := messaging.NewKafkaRelay(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.WhatsAppNumber, logger.Named("messaging"))
		defer relay.Close()
		sender = relay
	}

	co := checkout.New(docs, sender, checkout.Config{
		Destination:    cfg.WhatsAppNumber,
		PersistTimeout: cfg.RemoteTimeout,
		SendTimeout:    cfg.RemoteTimeout,
		Logger:         logger.Named("checkout"),
	})
	svc := api.NewService(ix, sessions, co, docs, api.Config{
		Destination: cfg.WhatsAppNumber,
		Location:    loc,
		Logger:      logger.Named("api"),
	})

	gin.SetMode(gin.ReleaseMode)
	adminServer := &http.Server{
		Addr:              ":" + cfg.AdminPort,
		Handler:           admin.NewRouter(admin.NewOrderHandler(docs, ready(ix), logger.Named("admin")), logger.Named("admin")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	adminErr := make(chan error, 1)
	go func() {
		logger.Info("admin server started", zap.String("addr", adminServer.Addr))
		if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			adminErr <- err
		}
		close(adminErr)
	}()

	grpcCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	grpcErr := make(chan error, 1)
	go func() {
		grpcErr <- storefront.RunServer(grpcCtx, storefront.ServerConfig{Name: serviceName, Port: cfg.Port}, logger, svc.Register)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-adminErr:
		runErr = fmt.Errorf("admin server: %w", err)
	case err := <-grpcErr:
		runErr = err
		grpcErr = nil
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("admin server shutdown", zap.Error(err))
	}
	if grpcErr != nil {
		if err := <-grpcErr; err != nil && runErr == nil {
			runErr = err
		}
	}
	return runErr
}

func openBackend(ctx context.Context, cfg *config.Config, seed bool, logger *zap.Logger) (backend, error) {
	switch cfg.Docstore {
	case config.DocstoreDynamoDB:
		client, err := docstore.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.DynamoDBEndpoint)
		if err != nil {
			return nil, err
		}
		d := docstore.NewDynamo(client, cfg.DynamoDBTable)
		if seed {
			if err := d.Seed(ctx, catalog.BuiltinSource()); err != nil {
				return nil, fmt.Errorf("failed to seed %s: %w", cfg.DynamoDBTable, err)
			}
			logger.Info("document store seeded", zap.String("table", cfg.DynamoDBTable))
		}
		return d, nil
	default:
		m, err := docstore.NewMemory()
		if err != nil {
			return nil, err
		}
		if err := m.Seed(ctx, catalog.BuiltinSource()); err != nil {
			return nil, err
		}
		return m, nil
	}
}

// preload retries Load until the catalog is servable or ctx ends.
func preload(ctx context.Context, ix *catalog.Index, retry time.Duration, logger *zap.Logger) {
	for {
		err := ix.Load(ctx)
		if err == nil {
			return
		}
		logger.Warn("catalog preload incomplete", zap.Error(err), zap.Duration("retry_in", retry))
		select {
		case <-ctx.Done():
			return
		case <-time.After(retry):
		}
	}
}

func ready(ix *catalog.Index) admin.ReadyFunc {
	return func() bool {
		select {
		case <-ix.Ready():
			return true
		default:
			return false
		}
	}
}
