package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/EVFleetLink/EVFleetLink/internal/common/config"
	"github.com/EVFleetLink/EVFleetLink/internal/common/db"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/EVFleetLink/EVFleetLink/internal/notify"
)

var (
	configPath  = flag.String("config", "configs/notify-worker.json", "配置文件路径")
	consulKVKey = flag.String("consul-kv-key", "", "从 Consul KV 读取配置的 key（优先于本地文件）")
	consulAddr  = flag.String("consul-addr", "localhost:8500", "Consul 地址，配合 -consul-kv-key 使用")
)

func loadConfig() (*config.Config, error) {
	if *consulKVKey != "" {
		return config.LoadConfigFromConsulAddr(*consulAddr, *consulKVKey)
	}
	return config.LoadConfig(*configPath)
}

func main() {
	flag.Parse()

	// 加载配置
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化数据库
	gormDB, err := db.NewMySQL(
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Database,
		cfg.Database.MaxIdle,
		cfg.Database.MaxOpen,
	)
	if err != nil {
		log.Fatalf("failed to init mysql: %v", err)
	}
	if err := gormDB.AutoMigrate(&notify.Notification{}); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	worker := notify.NewWorker(
		cfg.Kafka.Brokers,
		cfg.Kafka.NotifyTopic,
		cfg.Kafka.GroupID,
		notify.NewRepo(gormDB),
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		log.Infof("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Infof("notify-worker consuming topic %s (group %s)", cfg.Kafka.NotifyTopic, cfg.Kafka.GroupID)
	if err := worker.Run(ctx); err != nil {
		log.Fatalf("notify-worker exited with error: %v", err)
	}
	log.Info("notify-worker stopped gracefully")
}
