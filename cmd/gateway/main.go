package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stakemesh/wallet-gateway/internal/config"
	"github.com/stakemesh/wallet-gateway/internal/contract"
	"github.com/stakemesh/wallet-gateway/internal/domain"
	"github.com/stakemesh/wallet-gateway/internal/faults"
	"github.com/stakemesh/wallet-gateway/internal/handler"
	infraredis "github.com/stakemesh/wallet-gateway/internal/infra/redis"
	"github.com/stakemesh/wallet-gateway/internal/infra/sqlite"
	"github.com/stakemesh/wallet-gateway/internal/infra/sqlite/migrations"
	"github.com/stakemesh/wallet-gateway/internal/kvstore"
	"github.com/stakemesh/wallet-gateway/internal/notify"
	"github.com/stakemesh/wallet-gateway/internal/observability"
	"github.com/stakemesh/wallet-gateway/internal/toast"
	"github.com/stakemesh/wallet-gateway/internal/tracker"
	"github.com/stakemesh/wallet-gateway/internal/transport"
	"github.com/stakemesh/wallet-gateway/internal/wallet"
)

const metamaskInstallURL = "https://metamask.io/download/"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("gateway terminated", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !common.IsHexAddress(cfg.ContractAddress) {
		return fmt.Errorf("invalid staking contract address %q", cfg.ContractAddress)
	}

	db, err := sqlite.NewSQLite(cfg.StateDBPath)
	if err != nil {
		return fmt.Errorf("sqlite initialization failed: %w", err)
	}
	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sqlite underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	kv, err := kvstore.NewGormStore(db)
	if err != nil {
		return fmt.Errorf("kv store initialization failed: %w", err)
	}

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		return fmt.Errorf("rate limiter initialization failed: %w", err)
	}

	metrics := observability.NewMetrics()

	toasts := toast.NewDispatcher(cfg.ToastDedupWindow(), logger)
	toasts.SetMetrics(metrics)
	defer toasts.Close()

	notifications, err := notify.NewStore(ctx, kv, logger)
	if err != nil {
		return fmt.Errorf("notification store initialization failed: %w", err)
	}

	// Persist warning and error toasts so they survive the session; info
	// chatter stays ephemeral.
	unsubscribeToasts := toasts.Subscribe(func(ev toast.Event) {
		if ev.Type != toast.EventShown {
			return
		}
		if ev.Toast.Kind != domain.KindWarning && ev.Toast.Kind != domain.KindError {
			return
		}

		opts := []notify.AddOption{}
		if ev.Toast.Action != nil && ev.Toast.Action.URL != "" {
			opts = append(opts, notify.WithLink(ev.Toast.Action.URL))
		}
		if _, err := notifications.Add(ctx, ev.Toast.Kind, ev.Toast.Title, ev.Toast.Message, opts...); err != nil {
			logger.Warn("failed to persist notification", zap.Error(err))
			return
		}
		metrics.IncNotificationStored()
	})
	defer unsubscribeToasts()

	recorder := faults.NewRecorder(0)

	metamask, err := wallet.DialRPCConnector("metamask", "MetaMask", cfg.WalletRPCEndpoint, metamaskInstallURL)
	if err != nil {
		return fmt.Errorf("wallet connector initialization failed: %w", err)
	}
	defer metamask.Close()
	registry := wallet.NewRegistry(metamask)

	machine, err := wallet.NewMachine(ctx, registry, kv, toasts, recorder, cfg.ChainID, cfg.ModalGraceDelay(), logger)
	if err != nil {
		return fmt.Errorf("wallet machine initialization failed: %w", err)
	}
	machine.SetMetrics(metrics)

	chain, err := ethclient.Dial(cfg.RPCEndpoint)
	if err != nil {
		return fmt.Errorf("chain rpc initialization failed: %w", err)
	}
	defer chain.Close()

	txs, err := tracker.NewTracker(
		chain,
		toasts,
		limiter,
		cfg.ReceiptPollInterval(),
		cfg.TxHistoryCap,
		cfg.ExplorerBaseURL,
		logger,
	)
	if err != nil {
		return fmt.Errorf("transaction tracker initialization failed: %w", err)
	}
	txs.SetMetrics(metrics)
	defer txs.Close()

	submitter, err := contract.DialRPCSubmitter(cfg.WalletRPCEndpoint)
	if err != nil {
		return fmt.Errorf("transaction submitter initialization failed: %w", err)
	}
	defer submitter.Close()

	// The submitter signs as whichever account the wallet session holds.
	unsubscribeSession := machine.Subscribe(func(session domain.WalletSession) {
		submitter.SetFrom(common.HexToAddress(session.Address))
	})
	defer unsubscribeSession()

	staking, err := contract.NewStaking(common.HexToAddress(cfg.ContractAddress), chain, submitter)
	if err != nil {
		return fmt.Errorf("staking binding initialization failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(transport.CorrelationMiddleware())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	if err := handler.RegisterWalletRoutes(app, machine, registry); err != nil {
		return fmt.Errorf("wallet routes registration failed: %w", err)
	}
	if err := handler.RegisterStakingRoutes(app, staking, txs, machine); err != nil {
		return fmt.Errorf("staking routes registration failed: %w", err)
	}
	if err := handler.RegisterNotificationRoutes(app, notifications); err != nil {
		return fmt.Errorf("notification routes registration failed: %w", err)
	}
	if err := handler.RegisterTransactionRoutes(app, txs); err != nil {
		return fmt.Errorf("transaction routes registration failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("wallet gateway api started",
			zap.Int("port", cfg.APIPort),
			zap.Uint64("chainId", cfg.ChainID),
		)
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil && gctx.Err() == nil {
		return err
	}
	return nil
}
