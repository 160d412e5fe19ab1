package main

import (
	"context"
	"flag"

	"go.uber.org/zap"

	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/logging"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// stock-sync rewrites every Redis stock hint from the authoritative MySQL
// stock values. Run it after bulk catalog imports or a Redis flush.
func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	logging.Init(false)

	cfg, err := config.Load(*configPath)
	if err != nil {
		zap.L().Fatal("load config failed", zap.Error(err))
	}

	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)

	productRepo := mysql.NewProductRepository(db)
	hints := service.NewStockHintCache(redisClient)

	products, err := productRepo.ListAll(context.Background())
	if err != nil {
		zap.L().Fatal("list products failed", zap.Error(err))
	}

	if err := hints.Refresh(products); err != nil {
		zap.L().Fatal("refresh stock hints failed", zap.Error(err))
	}

	zap.L().Info("stock hints synced", zap.Int("products", len(products)))
}
