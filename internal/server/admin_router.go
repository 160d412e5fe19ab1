package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/shopspring/decimal"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// productRequest is the admin payload for product create/update. Price comes
// in as a decimal string ("9.99") and is stored as cents, so float rounding
// never touches the catalog.
type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageRef    string `json:"image_ref"`
	Stock       int64  `json:"stock"`
}

func (r productRequest) priceCents() (int64, error) {
	d, err := decimal.NewFromString(r.Price)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", r.Price, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("price must not be negative")
	}
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart(), nil
}

func (r productRequest) applyTo(p *product.Product) error {
	cents, err := r.priceCents()
	if err != nil {
		return err
	}
	if r.Stock < 0 {
		return fmt.Errorf("stock must not be negative")
	}
	p.Name = r.Name
	p.Description = r.Description
	p.PriceCents = cents
	p.ImageRef = r.ImageRef
	p.Stock = r.Stock
	return nil
}

// RegisterAdminRoutes wires the management API, usually served on its own
// port next to the storefront.
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	eventRepo := mysql.NewOrderEventRepository(db)

	events := service.NewEventPublisher(mqConn)
	hints := service.NewStockHintCache(redisClient)

	catalogSvc := service.NewCatalogService(productRepo, cartRepo, orderRepo, hints)
	orderSvc := service.NewOrderService(orderRepo, productRepo, events)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api", authHandler(&cfg.JWT, tokenCache), requireAdmin())

	// ---------- product management ----------

	api.Get("/products", func(ctx iris.Context) {
		list, err := catalogSvc.List(ctx.Request().Context(), ctx.URLParam("q"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Post("/products", func(ctx iris.Context) {
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		p := &product.Product{}
		if err := req.applyTo(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := catalogSvc.Create(ctx.Request().Context(), p); err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Put("/products/{id:string}", func(ctx iris.Context) {
		p, err := catalogSvc.GetByID(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		var req productRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := req.applyTo(p); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := catalogSvc.Update(ctx.Request().Context(), p); err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": p})
	})

	api.Delete("/products/{id:string}", func(ctx iris.Context) {
		if err := catalogSvc.Delete(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "deleted"})
	})

	// ---------- order management ----------

	api.Get("/orders", func(ctx iris.Context) {
		limit, err := strconv.Atoi(ctx.URLParamDefault("limit", "20"))
		if err != nil || limit <= 0 {
			limit = 20
		}
		list, err := orderSvc.ListRecent(ctx.Request().Context(), limit)
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	api.Put("/orders/{id:string}/status", func(ctx iris.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		o, err := orderSvc.UpdateStatus(ctx.Request().Context(), ctx.Params().Get("id"), req.Status)
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	api.Get("/orders/{id:string}/events", func(ctx iris.Context) {
		list, err := eventRepo.ListByOrder(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	// ---------- stats ----------

	api.Get("/stats", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "data": service.GetMonitor().GetStats()})
	})
}
