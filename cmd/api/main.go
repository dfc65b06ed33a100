package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lingua-daily/internal/chain"
	"lingua-daily/internal/client"
	"lingua-daily/internal/config"
	"lingua-daily/internal/handler"
	applog "lingua-daily/internal/logger"
	"lingua-daily/internal/model"
	"lingua-daily/internal/repository"
	"lingua-daily/internal/server"
	"lingua-daily/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment directly")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("parse config: %v", err)
	}

	logger, err := applog.New(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Fatal("create data dir", zap.Error(err))
	}

	orders, err := repository.NewOrderRepository(filepath.Join(cfg.DataDir, "orders.json"))
	if err != nil {
		logger.Fatal("open order store", zap.Error(err))
	}
	subscribers, err := repository.NewSubscriberRepository(filepath.Join(cfg.DataDir, "subscribers.json"))
	if err != nil {
		logger.Fatal("open subscriber store", zap.Error(err))
	}

	deepseekClient := client.NewDeepSeekClient(&cfg.DeepSeek)
	sesClient, err := client.NewSESClient(&cfg.Tencent)
	if err != nil {
		logger.Fatal("init ses client", zap.Error(err))
	}

	txBuilder, err := chain.NewTxBuilder(cfg.Solana.RPCURL, cfg.Solana.USDCMint)
	if err != nil {
		logger.Fatal("init solana tx builder", zap.Error(err))
	}

	verifiers := map[string]chain.Verifier{
		model.ChainSolana: chain.NewSolanaVerifier(cfg.Solana.RPCURL, logger),
		model.ChainAptos:  chain.NewAptosVerifier(&cfg.Aptos, logger),
		model.ChainSui:    chain.NewSuiVerifier(&cfg.Sui, logger),
	}
	if cfg.EVM.MerchantAddress != "" {
		baseVerifier, err := chain.NewEVMVerifier(cfg.EVM.BaseRPCURL, cfg.EVM.MerchantAddress, cfg.EVM.BaseUSDC, logger)
		if err != nil {
			logger.Fatal("init base verifier", zap.Error(err))
		}
		verifiers[model.ChainBase] = baseVerifier

		arbVerifier, err := chain.NewEVMVerifier(cfg.EVM.ArbitrumRPCURL, cfg.EVM.MerchantAddress, cfg.EVM.ArbitrumUSDC, logger)
		if err != nil {
			logger.Fatal("init arbitrum verifier", zap.Error(err))
		}
		verifiers[model.ChainArbitrum] = arbVerifier
	} else {
		logger.Warn("ETH_MERCHANT_ADDRESS not set, evm verification disabled")
	}

	sentenceService := service.NewSentenceService(logger, deepseekClient)
	mailerService := service.NewMailerService(sesClient, &cfg.Tencent)
	subscriptionService := service.NewSubscriptionService(logger, cfg.Languages, subscribers, sentenceService, mailerService)
	paymentService := service.NewPaymentService(logger, cfg.Languages, orders, subscribers, verifiers, txBuilder, sentenceService, mailerService)
	adminService := service.NewAdminService(&cfg.Admin, orders, subscribers)

	srv := server.NewServer(
		handler.NewPaymentHandler(paymentService),
		handler.NewSubscriptionHandler(subscriptionService, sentenceService, cfg.Languages),
		handler.NewAdminHandler(adminService),
		handler.NewConfigHandler(cfg),
		adminService,
	)

	go func() {
		address := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
		logger.Info("starting server", zap.String("address", address))
		if err := srv.Start(address); err != nil {
			logger.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
