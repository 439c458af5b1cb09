package main

import (
	"flag"
	"fmt"

	"github.com/EVFleetLink/EVFleetLink/internal/account"
	"github.com/EVFleetLink/EVFleetLink/internal/common/config"
	"github.com/EVFleetLink/EVFleetLink/internal/common/db"
	"github.com/EVFleetLink/EVFleetLink/internal/common/httpserver"
	"github.com/EVFleetLink/EVFleetLink/internal/common/logger"
	"github.com/EVFleetLink/EVFleetLink/internal/common/middleware"
	"github.com/EVFleetLink/EVFleetLink/internal/common/redisx"
	"github.com/EVFleetLink/EVFleetLink/internal/common/tracing"
	"github.com/EVFleetLink/EVFleetLink/internal/fleet"
	"github.com/EVFleetLink/EVFleetLink/internal/notify"
	"github.com/EVFleetLink/EVFleetLink/internal/order"
	"github.com/go-chi/chi/v5"
)

var (
	configPath  = flag.String("config", "configs/fleet-service.json", "配置文件路径")
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

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

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
	if err := gormDB.AutoMigrate(
		&order.Order{}, &order.Task{}, &order.ExtraFee{},
		&fleet.Vehicle{}, &fleet.Driver{},
		&notify.Notification{},
		&account.Account{},
	); err != nil {
		log.Fatalf("failed to migrate mysql schema: %v", err)
	}

	// Redis：订单状态读缓存（连不上只降级，不阻塞启动）
	rdb, err := redisx.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.PoolSize)
	if err != nil {
		log.Warnf("failed to connect to Redis, status cache disabled: %v", err)
		rdb = nil
	}

	// Kafka：司机通知事件发射器
	emitter := notify.NewEmitter(cfg.Kafka.Brokers, cfg.Kafka.NotifyTopic, log)
	defer emitter.Close()

	// 组装各域
	fleetRepo := fleet.NewRepo(gormDB)
	orderRepo := order.NewRepo(gormDB)
	orderSvc := order.NewService(orderRepo, fleetRepo, emitter, log)

	orderHTTP := order.NewHTTPServer(orderSvc, rdb, log)
	fleetHTTP := fleet.NewHTTPServer(fleetRepo, log)
	notifyHTTP := notify.NewHTTPServer(notify.NewRepo(gormDB), log)
	accountHTTP := account.NewHTTPServer(account.NewRepo(gormDB), cfg.Auth, log)

	// 启动统一的 HTTP 服务模板
	err = httpserver.RunHTTPServer(cfg, log, func(r chi.Router) {
		orderHTTP.Register(r)
		fleetHTTP.Register(r)
		notifyHTTP.Register(r)
		accountHTTP.Register(r)
	}, httpserver.WithRateLimit(middleware.NewTokenBucket(200, 100)))
	if err != nil {
		log.Fatalf("fleet-service exited with error: %v", err)
	}
}
