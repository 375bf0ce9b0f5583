package main

import (
	"context"

	"go.uber.org/zap"

	"auctionhouse/internal/auction/application"
	auctionhttp "auctionhouse/internal/auction/infra/http"
	"auctionhouse/internal/auction/infra/notify"
	auctionpg "auctionhouse/internal/auction/infra/repository/postgres"
	auctionws "auctionhouse/internal/auction/infra/websocket"
	"auctionhouse/internal/auction/jobs"
	"auctionhouse/internal/shared/config"
	"auctionhouse/internal/shared/db"
	"auctionhouse/internal/shared/db/migrations"
	"auctionhouse/internal/shared/httpserver"
	"auctionhouse/internal/shared/logger"
	"auctionhouse/internal/shared/websocket"
	userhttp "auctionhouse/internal/user/infra/http"
	userpg "auctionhouse/internal/user/infra/repository/postgres"

	auctiondomain "auctionhouse/internal/auction/domain"
)

func main() {
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting auctionhouse server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	if err := migrations.Run(cfg.MigrationsURL, cfg.PostgresDSN()); err != nil {
		log.Fatal("Database migration failed", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	// Storage
	store := auctionpg.NewStore(pool)
	userRepo := userpg.NewUserRepository(pool)

	// Real-time hub and event fan-out
	hub := websocket.NewHub()
	go hub.Run(ctx)
	broadcaster := auctionws.NewHubBroadcaster(hub)

	// Application services
	clock := auctiondomain.SystemClock{}
	notifier := notify.NewLogNotifier()
	svc := application.NewAuctionService(
		application.NewPlaceBidUseCase(store, broadcaster, clock),
		application.NewCreateAuctionUseCase(store, clock),
		application.NewListAuctionsUseCase(store, clock),
		application.NewGetAuctionUseCase(store, clock),
		application.NewListBidsUseCase(store),
		application.NewCloseExpiredUseCase(store, broadcaster, notifier, userRepo),
	)

	// Closing reconciler
	closer := jobs.NewCloser(svc, clock, cfg.CloseInterval, cfg.CloseBatchSize)
	go closer.Run(ctx)

	// HTTP + websocket surface
	server := httpserver.NewServer(cfg.FrontendOrigins)
	auctionhttp.NewAuctionHandler(svc).Register(server.App())
	userhttp.NewUserHandler(userRepo).Register(server.App())

	wsHandler := auctionws.NewAuctionWSHandler(hub)
	wsHandler.Register(ctx, server.App())
	go wsHandler.ListenForMessages(ctx)

	if err := server.Start(cfg.HTTPAddr); err != nil {
		log.Fatal("HTTP server failed", zap.Error(err))
	}
}
