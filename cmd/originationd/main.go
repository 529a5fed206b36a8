package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawnworks/origination/internal/application/usecase"
	"github.com/pawnworks/origination/internal/infrastructure/adapter"
	"github.com/pawnworks/origination/internal/infrastructure/config"
	"github.com/pawnworks/origination/internal/infrastructure/messaging"
	pgRepo "github.com/pawnworks/origination/internal/infrastructure/persistence/postgres"
	platformkafka "github.com/pawnworks/origination/internal/platform/kafka"
	"github.com/pawnworks/origination/internal/platform/observability"
	platformpg "github.com/pawnworks/origination/internal/platform/postgres"
	"github.com/pawnworks/origination/internal/platform/tlsutil"
	grpcPresentation "github.com/pawnworks/origination/internal/presentation/grpc"
	"github.com/pawnworks/origination/internal/presentation/rest"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:           "originationd",
		Short:         "Pawn loan origination service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), certsCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the service version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "originationd", version)
		},
	}
}

func certsCmd() *cobra.Command {
	var hosts []string
	var outDir string
	cmd := &cobra.Command{
		Use:   "certs",
		Short: "Generate a self-signed dev certificate for gRPC TLS",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tlsutil.GenerateSelfSignedCert(hosts, outDir); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote ca.pem, ca-key.pem, server.pem, server-key.pem to", outDir)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&hosts, "hosts", []string{"localhost", "127.0.0.1"}, "hostnames and IPs for the server certificate")
	cmd.Flags().StringVar(&outDir, "out", "certs", "output directory")
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the origination gRPC and HTTP servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run()
		},
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Validate()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  "info",
		Format: "json",
	})
	slog.SetDefault(logger)

	logger.Info("starting origination-service",
		"version", version,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
	)

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pgCfg := platformpg.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	}
	pool, err := platformpg.NewPool(dbCtx, pgCfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if migErr := platformpg.RunMigrations(pgCfg.DSN(), "file://migrations"); migErr != nil {
		logger.Warn("migration warning", "error", migErr)
	}

	// Messaging.
	kafkaCfg := platformkafka.Config{
		Brokers:       cfg.Kafka.Brokers,
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
	}
	producer := platformkafka.NewProducer(kafkaCfg)
	defer producer.Close()
	publisher := messaging.NewKafkaEventPublisher(producer, cfg.Kafka.EventsTopic, logger)

	updates := messaging.NewCustomerUpdateFeed(logger)
	updateConsumer := updates.Consumer(kafkaCfg, cfg.Kafka.CustomerUpdatesTopic)
	go func() {
		if consumeErr := updateConsumer.Start(ctx); consumeErr != nil && ctx.Err() == nil {
			logger.Warn("customer update consumer stopped", "error", consumeErr)
		}
	}()
	defer updateConsumer.Close()

	// Infrastructure adapters.
	txnRepo := pgRepo.NewTransactionRepo(pool)
	customerRepo := pgRepo.NewCustomerRepo(pool)
	policyClient := adapter.NewStubPolicyClient()
	eligibilityClient := adapter.NewStubEligibilityClient()
	receipts := adapter.NewLogReceiptService(logger)

	// Use cases.
	beginUC := usecase.NewBeginSessionUseCase(policyClient, logger)
	submitUC := usecase.NewSubmitTransactionUseCase(txnRepo, nil, receipts, publisher, logger)

	// gRPC server.
	handler := grpcPresentation.NewOriginationHandler(beginUC, submitUC, customerRepo, eligibilityClient)
	grpcServer := grpcPresentation.NewServer(handler, logger)

	// HTTP server (health checks).
	mux := http.NewServeMux()
	rest.NewHealthHandler(pool, logger).Register(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)

	go func() {
		if serveErr := grpcServer.Serve(cfg.GRPCAddr()); serveErr != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", serveErr)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", serveErr)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	grpcServer.GracefulStop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("origination-service stopped")
	return nil
}
