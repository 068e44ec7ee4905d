package svc

import (
	"log"
	"time"

	"riskscan/internal/cache"
	"riskscan/internal/config"
	"riskscan/internal/model"
	"riskscan/internal/queue"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type ServiceContext struct {
	Config     config.Config
	DB         *gorm.DB
	HistoryDao model.HistoryDao
	// 价格子系统共享缓存，进程级，跨请求复用
	RatioCache     *cache.RatioCache
	TokenInfoCache *cache.TokenInfoCache
	// 可选的结论事件流，Broker 未配置时为 nil
	VerdictProducer *queue.Producer
}

func NewServiceContext(c config.Config) *ServiceContext {
	db, err := initDB(c.Postgres.DSN)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	var producer *queue.Producer
	if c.Kafka.Broker != "" {
		producer, err = queue.NewProducer(c.Kafka.Broker, c.Kafka.Topic)
		if err != nil {
			// 事件流是增值功能，连不上 Kafka 不应阻止服务启动
			log.Printf("kafka producer unavailable, verdict events disabled: %v", err)
			producer = nil
		}
	}

	return &ServiceContext{
		Config:          c,
		DB:              db,
		HistoryDao:      model.NewHistoryDao(db),
		RatioCache:      cache.NewRatioCache(),
		TokenInfoCache:  cache.NewTokenInfoCache(),
		VerdictProducer: producer,
	}
}

func initDB(dsn string) (*gorm.DB, error) {
	newLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	// 设置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}
