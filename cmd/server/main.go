package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	mqcontracts "taskadee/contracts/mq"
	"taskadee/internal/config"
	"taskadee/internal/handler"
	"taskadee/internal/httpserver"
	"taskadee/internal/mqhandler"
	"taskadee/internal/progress"
	"taskadee/internal/repository"
	"taskadee/internal/repository/memory"
	"taskadee/internal/service"
	"taskadee/pkg/circuitbreaker"
	"taskadee/pkg/db"
	"taskadee/pkg/logger"
	"taskadee/pkg/mq"
	"taskadee/pkg/redis"
	"taskadee/pkg/util"
)

type taskStore interface {
	service.TaskStore
	progress.TaskLister
}

const habitCheckedInQueue = "habit.checked_in.q"

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger 还没初始化
		zap.NewExample().Fatal("Failed to load config", zap.Error(err))
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting taskadee...",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("port", cfg.Server.Port),
	)

	// Stores
	var (
		tasks  taskStore
		habits service.HabitStore
		deps   httpserver.Deps
	)
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		tasks = memory.NewTaskStore()
		habits = memory.NewHabitStore()
	default:
		log.Info("Initializing database connection...",
			zap.String("db_host", cfg.DB.Host),
			zap.Int("db_port", cfg.DB.Port),
		)
		pool, err := db.NewConnection(cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer pool.Close()
		log.Info("Database connection established successfully")

		tasks = repository.NewTaskRepository(pool, log)
		habits = repository.NewHabitRepository(pool, log)
		deps.DB = pool
	}

	// Events：未配置 mq.url 时不发布也不消费
	var publisher service.EventPublisher
	var consumer *mq.Consumer
	if cfg.MQ.URL != "" {
		pub, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer pub.Close()
		// 请求路径上的发布经过熔断器；consumer 直接用 pub，失败交给重试/DLQ
		publisher = mq.NewGuardedPublisher(pub, circuitbreaker.DefaultConfig(), log)

		rdb := redis.NewRedisClient(cfg.Redis, log)
		defer rdb.Close()
		deduper := util.NewDeduper(rdb, cfg.Progress.DedupTTL, log)

		log.Info("Initializing MQ consumer for habit.checked_in...",
			zap.String("queue", habitCheckedInQueue),
			zap.String("routing_key", mqcontracts.RoutingKeyHabitCheckedIn),
		)
		consumer, err = mq.NewConsumer(cfg.MQ.URL, habitCheckedInQueue, mqcontracts.RoutingKeyHabitCheckedIn, log)
		if err != nil {
			log.Fatal("Failed to init consumer", zap.Error(err))
		}
		defer consumer.Close()

		milestoneHandler := mqhandler.NewHabitCheckedInHandler(habits, pub, deduper, cfg.Progress.StreakMilestones, log)
		consumer.SetHandler(milestoneHandler.Handle)

		go func() {
			log.Info("Starting habit.checked_in consumer...")
			if err := consumer.StartConsuming(); err != nil {
				log.Error("habit.checked_in consumer stopped", zap.Error(err))
			}
		}()
		deps.Consumer = consumer
	} else {
		log.Warn("mq.url is empty, domain events are disabled")
	}

	// HTTP Server
	router := httpserver.NewRouter(httpserver.Handlers{
		Tasks:    handler.NewTaskHandler(service.NewTaskService(tasks, publisher, log), log),
		Habits:   handler.NewHabitHandler(service.NewHabitService(habits, publisher, log), log),
		Progress: handler.NewProgressHandler(progress.NewEngine(tasks, habits, log), log),
	}, deps, cfg.JWT.Secret, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down taskadee gracefully...")

	// 停止 MQ 消费者
	if consumer != nil {
		log.Info("Stopping MQ consumer...")
		consumer.Stop()
	}

	// 关闭 HTTP 服务器
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("taskadee shutdown complete")
}
