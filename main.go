package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dzeckelev/quickpay/api"
	"github.com/dzeckelev/quickpay/auth"
	"github.com/dzeckelev/quickpay/chat"
	"github.com/dzeckelev/quickpay/command"
	"github.com/dzeckelev/quickpay/config"
	"github.com/dzeckelev/quickpay/db"
	"github.com/dzeckelev/quickpay/eth"
	"github.com/dzeckelev/quickpay/gen"
	"github.com/dzeckelev/quickpay/llm"
	"github.com/dzeckelev/quickpay/logging"
	"github.com/dzeckelev/quickpay/proc"
	"github.com/dzeckelev/quickpay/registry"
	"github.com/dzeckelev/quickpay/reward"
	"github.com/dzeckelev/quickpay/service"
)

func main() {
	fConfig := flag.String("config", "config.json", "Configuration file path.")

	flag.Parse()

	cfg, err := config.Load(*fConfig)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	ethClient, err := eth.NewClient(ctx, cfg.Eth.NodeURL)
	if err != nil {
		log.Fatal(err)
	}
	defer ethClient.Close()

	if err := eth.WaitSync(ctx, ethClient, logger, cfg.Eth.SyncPause); err != nil {
		log.Fatal(err)
	}

	netID, err := ethClient.NetworkID(ctx)
	if err != nil {
		log.Fatal(err)
	}
	logger.Info("connected to node", "url", cfg.Eth.NodeURL,
		"network", netID.String())

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err)
	}

	if err := db.Migrate(conn); err != nil {
		log.Fatal(err)
	}

	database := db.NewDB(conn)
	defer db.CloseDB(database)

	registryContract, err := eth.NewRegistry(ethClient,
		common.HexToAddress(cfg.Eth.RegistryAddress))
	if err != nil {
		log.Fatal(err)
	}

	quickPay, err := eth.NewQuickPay(ethClient,
		common.HexToAddress(cfg.Eth.QuickPayAddress))
	if err != nil {
		log.Fatal(err)
	}

	txs := db.NewTransactions(database)
	resolver := registry.NewResolver(registryContract,
		db.NewUsernames(database), logger)

	ledger := service.NewLedger(txs, db.NewRewards(database), resolver,
		reward.NewGenerator(nil), gen.NewUUID, logger)
	payments := service.NewPayments(cfg.Payment, ethClient, quickPay,
		resolver, txs, logger)

	model := llm.New(cfg.LLM)
	if !model.Enabled() {
		logger.Warn("language model disabled, using pattern parser only")
	}

	var remote command.Parser
	var assistant *chat.Assistant
	if model.Enabled() {
		remote = command.NewRemote(model, logger)
		assistant = chat.NewAssistant(model)
	}

	sessions := chat.NewSessions(gen.NewUUID)
	bot := chat.NewBot(command.NewInterpreter(remote), payments, assistant,
		cfg.Payment.NativeSymbol, logger)

	scheduler := proc.NewScheduler(ctx, cfg.Proc, ethClient, txs, sessions,
		logger)
	if err := scheduler.Start(); err != nil {
		log.Fatal(err)
	}
	defer scheduler.Close()

	srv := api.NewServer(cfg.API, logger,
		api.NewRESTHandlers(logger, ledger, resolver),
		api.NodeHealth{DB: conn, Client: ethClient})

	handler := api.NewHandler(sessions, bot, auth.NewTokens(cfg.Auth), logger)
	if err := srv.AddHandler(handler); err != nil {
		log.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("api server failed", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		cfg.API.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down api server", "error", err)
	}
}
