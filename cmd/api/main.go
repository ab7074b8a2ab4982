package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"rushivan/internal/config"
	"rushivan/internal/infra/db"
	"rushivan/internal/infra/logger"
	"rushivan/internal/infra/payment"
	infraRepo "rushivan/internal/infra/repository"
	"rushivan/internal/server"
	"rushivan/internal/usecase"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logCfg := logger.ConfigForEnv(cfg.GoEnv, cfg.Log.Level)
	if cfg.Log.Format != "" {
		logCfg.Format = cfg.Log.Format
	}
	log := logger.New(logCfg)
	defer func() { _ = log.Sync() }()

	//DB接続
	gormDB, err := db.Connect(cfg.Database, logger.NewGormLogger(log, logger.GormLevel(cfg.Log.SQLLevel)))
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("db migrate failed", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("db handle failed", zap.Error(err))
	}
	defer sqlDB.Close()

	//決済署名
	signer := payment.NewRazorpaySigner(cfg.Razorpay.KeySecret)
	if !signer.Configured() {
		log.Warn("RAZORPAY_KEY_SECRET is empty; every payment verification will fail")
	}

	//Usecase生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	orderUC := usecase.NewOrderUsecase(
		txm,
		usecase.NewPricingResolver(),
		usecase.NewInventoryLedger(cfg.Checkout.StockPolicy),
		usecase.CheckoutPolicy{
			PricePolicy:    cfg.Checkout.PricePolicy,
			PriceTolerance: cfg.Checkout.PriceTolerance,
		},
		log,
	)
	paymentUC := usecase.NewPaymentUsecase(txm, signer, log)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, log)

	e := server.New(server.Deps{
		Orders:         orderUC,
		Payments:       paymentUC,
		AdminOrders:    adminOrderUC,
		DB:             sqlDB,
		Logger:         log,
		JWTSecret:      cfg.JWTSecret,
		RequestTimeout: cfg.RequestTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.Port
	log.Info("server starting",
		zap.String("addr", addr),
		zap.String("env", cfg.GoEnv),
		zap.String("price_policy", cfg.Checkout.PricePolicy),
		zap.String("stock_policy", cfg.Checkout.StockPolicy),
	)
	if err := server.Start(ctx, e, addr, cfg.ShutdownTimeout); err != nil {
		log.Error("server stopped", zap.Error(err))
		return
	}
	log.Info("server stopped")
}
