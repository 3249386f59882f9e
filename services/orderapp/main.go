package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/middleware"

	"github.com/orderbuddy/orderbuddy/pkg"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/mongo"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/ordering"
	"github.com/orderbuddy/orderbuddy/services/orderapp/internal/realtime"
)

const (
	appNamespace = "ORDERAPP"
	appName      = "orderapp"
	appVersion   = "0.1.0"
)

func main() {
	config, err := apt.LoadConfig(appNamespace, os.Args[1:])
	if err != nil {
		log.Fatalf("%s(%s) cannot setup: %v", appName, appVersion, err)
	}

	logLevel, _ := config.GetString("log.level")
	logger := apt.NewLogger(logLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer stop()

	seedCtx, cancelSeeds := context.WithCancel(ctx)
	defer cancelSeeds()

	baseRepo := mongo.NewBaseRepo(config, logger)
	err = baseRepo.Start(ctx)
	if err != nil {
		log.Fatalf("%s(%s) cannot start base repository: %v", appName, appVersion, err)
	}

	db := baseRepo.GetDatabase()
	if db == nil {
		log.Fatalf("%s(%s) cannot initialize repository database: %v", appName, appVersion, errors.New("repository database is nil"))
	}

	menuRepo := mongo.NewMenuRepo(db)
	previewRepo := mongo.NewPreviewRepo(db)
	orderRepo := mongo.NewOrderRepo(db)
	stationRepo := mongo.NewStationRepo(db)
	locationRepo := mongo.NewLocationRepo(db)
	restaurantRepo := mongo.NewRestaurantRepo(db)
	campaignRepo := mongo.NewCampaignRepo(db)

	if err := previewRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("%s(%s) cannot create preview indexes: %v", appName, appVersion, err)
	}

	natsURL := config.GetStringOrDef("nats.url", "nats://localhost:4222")

	pub, err := pkg.NewNATSPublisher(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS publisher: %v", appName, appVersion, err)
	}

	sub, err := pkg.NewNATSSubscriber(natsURL)
	if err != nil {
		log.Fatalf("%s(%s) cannot connect to NATS subscriber: %v", appName, appVersion, err)
	}

	registry := realtime.NewRegistry()
	router := realtime.NewRouter(registry, stationRepo, pub, logger)
	bridge := realtime.NewEventBridge(sub, router, logger)
	gateway := realtime.NewGateway(registry, router, stationRepo, logger)

	validator := ordering.NewPriceValidator(menuRepo, campaignRepo, logger)
	previewStore := ordering.NewPreviewStore(previewRepo, validator, locationRepo, logger)

	statusBase := config.GetStringOrDef("web.status_base_url", "http://localhost:8080")
	messenger := ordering.NewNATSMessenger(pub)
	pusher := ordering.NewNATSPusher(pub)

	lifecycleMgr := ordering.NewLifecycleManager(
		orderRepo, previewRepo, locationRepo, restaurantRepo,
		router, messenger, pusher, statusBase, logger,
	)
	tracker := ordering.NewItemTracker(orderRepo, router, logger)

	hd := ordering.HandlerDeps{
		Menus:     menuRepo,
		Stations:  stationRepo,
		Previews:  previewStore,
		Validator: validator,
		Lifecycle: lifecycleMgr,
		Tracker:   tracker,
	}

	handler := ordering.NewHandler(hd, config, logger)

	publisherLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return pub.Close()
		},
	}

	subLifecycle := apt.LifecycleHooks{
		OnStop: func(context.Context) error {
			return sub.Close()
		},
	}

	// Setup demo seeding if enabled
	demoEnabled, _ := config.GetString("seeding.demo")
	var seedHooks apt.LifecycleHooks
	if demoEnabled == "true" {
		logger.Info("Demo seeding enabled for orderapp service")
		seedHooks = apt.LifecycleHooks{
			OnStart: ordering.DemoSeedingFunc(seedCtx, db, logger),
			OnStop: func(context.Context) error {
				cancelSeeds()
				return nil
			},
		}
	}

	stack := middleware.DefaultStack(middleware.StackOptions{
		Logger: logger,
	})

	lifecycles := []interface{}{
		apt.LifecycleHooks{OnStop: baseRepo.Stop},
		bridge,
		publisherLifecycle,
		subLifecycle,
	}
	if demoEnabled == "true" {
		lifecycles = append(lifecycles, seedHooks)
	}

	options := []apt.Option{
		apt.WithConfig(config),
		apt.WithLogger(logger),
		apt.WithHTTPMiddleware(stack...),
		apt.WithHTTPServerModules("web.port", handler, gateway),
		apt.WithLifecycle(lifecycles...),
		apt.WithHealthChecks(appName),
	}

	ms := apt.NewMicro(options...)
	logger.Infof("Starting %s(%s)", appName, appVersion)

	err = ms.Run(ctx)
	if err != nil {
		_ = baseRepo.Stop(context.Background())
		log.Fatalf("%s(%s) stopped: %v", appName, appVersion, err)
	}

	logger.Infof("%s(%s) stopped", appName, appVersion)
}
