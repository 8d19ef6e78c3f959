package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"energydash/internal/config"
	"energydash/internal/dashboard"
	"energydash/internal/discovery"
	"energydash/internal/metrics"
	"energydash/internal/models"
	"energydash/internal/mqtt"
	"energydash/internal/redis"
	"energydash/internal/scheduler"
	"energydash/internal/simulation"
	"energydash/internal/utils"
	"energydash/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := utils.InitLogging(cfg.LogLevel)

	seeds := dashboard.DefaultSeed
	if cfg.SeedFile != "" {
		if seeds, err = dashboard.LoadSeedFile(cfg.SeedFile); err != nil {
			log.Fatalf("Failed to load seed file: %v", err)
		}
	}

	rng := simulation.NewSeededSource(cfg.RandomSeed)
	devices, err := dashboard.BuildDevices(seeds, time.Now(), rng)
	if err != nil {
		log.Fatalf("Failed to build devices: %v", err)
	}
	ctrl, err := dashboard.NewController(devices,
		dashboard.WithRandomSource(rng),
		dashboard.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}
	logger.Info("dashboard ready", "devices", len(devices))

	ctx, cancel := context.WithCancel(context.Background())
	var sinks sync.WaitGroup
	runSink := func(run func(context.Context, <-chan models.Snapshot)) {
		snaps, unsubscribe := ctrl.Subscribe()
		sinks.Add(1)
		go func() {
			defer sinks.Done()
			defer unsubscribe()
			run(ctx, snaps)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	runSink(metrics.New(reg).Run)

	if cfg.RedisAddr != "" {
		redisClient := redis.NewRedisClient(cfg.RedisAddr)
		defer redisClient.Close()
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redis.CheckConnection(pingCtx, redisClient); err != nil {
			logger.Warn("redis not reachable yet, publishing anyway", "error", err)
		}
		pingCancel()
		runSink(redis.NewPublisher(redisClient, cfg.RedisTTL, logger).Run)
	}

	if cfg.MQTTBroker != "" {
		mqttClient, err := mqtt.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID, logger)
		if err != nil {
			log.Fatalf("Failed to connect to MQTT: %v", err)
		}
		defer mqttClient.Disconnect(250)

		bridge := mqtt.NewBridge(mqttClient, cfg.MQTTTopicPrefix, ctrl, logger)
		if err := bridge.Start(); err != nil {
			log.Fatalf("Failed to start MQTT bridge: %v", err)
		}
		defer bridge.Stop()
		runSink(bridge.Run)
	}

	if cfg.MDNSLocalName != "" {
		var announcer io.Closer
		if announcer, err = discovery.Announce(cfg.MDNSLocalName, logger); err != nil {
			logger.Warn("mDNS disabled", "error", err)
		} else {
			defer announcer.Close()
		}
	}

	sched := scheduler.NewScheduler(logger)
	if err := sched.Simulation(scheduler.TickerFunc(func(now time.Time) { ctrl.Tick(now) })); err != nil {
		log.Fatalf("Failed to schedule simulation: %v", err)
	}
	sched.Start()

	webServer := web.NewWebServer(ctrl, web.Options{
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
		Logger:      logger,
	})
	go func() {
		if err := webServer.Start(cfg.HTTPAddr); err != nil {
			logger.Error("web server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	sched.Stop()

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("web server shutdown", "error", err)
	}

	cancel()
	sinks.Wait()
	logger.Info("shutdown complete")
}
