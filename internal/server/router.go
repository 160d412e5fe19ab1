package server

import (
	"time"

	"github.com/kataras/iris/v12"

	"github.com/example/goshop/internal/auth"
	"github.com/example/goshop/internal/config"
	"github.com/example/goshop/internal/datamodels/product"
	"github.com/example/goshop/internal/infra/mq"
	"github.com/example/goshop/internal/infra/redis"
	"github.com/example/goshop/internal/middleware"
	"github.com/example/goshop/internal/repository/mysql"
	"github.com/example/goshop/internal/service"
)

// productView is a catalog entry plus the advisory stock hint from Redis.
type productView struct {
	*product.Product
	StockHint *int64 `json:"stock_hint,omitempty"`
}

// RegisterRoutes wires the storefront API.
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	productRepo := mysql.NewProductRepository(db)
	cartRepo := mysql.NewCartRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	favoriteRepo := mysql.NewFavoriteRepository(db)

	events := service.NewEventPublisher(mqConn)
	hints := service.NewStockHintCache(redisClient)

	catalogSvc := service.NewCatalogService(productRepo, cartRepo, orderRepo, hints)
	cartSvc := service.NewCartService(cartRepo, productRepo)
	orderSvc := service.NewOrderService(orderRepo, productRepo, events)
	favoritesSvc := service.NewFavoritesService(favoriteRepo)
	checkoutSvc := service.NewCheckoutService(
		productRepo,
		cartRepo,
		orderRepo,
		events,
		redisClient,
		cfg.Checkout.StoreCallTimeout(),
		int64(cfg.Checkout.IdempotencyTTLSeconds),
	)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	api := app.Party("/api")

	api.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"code": 0, "msg": "ok"})
	})

	authAPI := api.Party("/", authHandler(&cfg.JWT, tokenCache))

	// ---------- catalog ----------

	authAPI.Get("/products", func(ctx iris.Context) {
		keyword := ctx.URLParam("q")
		list, err := catalogSvc.List(ctx.Request().Context(), keyword)
		if err != nil {
			writeErr(ctx, err)
			return
		}
		views := make([]productView, 0, len(list))
		for _, p := range list {
			v := productView{Product: p}
			if hint, ok := catalogSvc.StockHint(p.ID); ok {
				v.StockHint = &hint
			}
			views = append(views, v)
		}
		ctx.JSON(iris.Map{"code": 0, "data": views})
	})

	authAPI.Get("/products/{id:string}", func(ctx iris.Context) {
		p, err := catalogSvc.GetByID(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		v := productView{Product: p}
		if hint, ok := catalogSvc.StockHint(p.ID); ok {
			v.StockHint = &hint
		}
		ctx.JSON(iris.Map{"code": 0, "data": v})
	})

	// ---------- cart ----------

	authAPI.Get("/cart", func(ctx iris.Context) {
		lines, err := cartSvc.List(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": lines})
	})

	authAPI.Post("/cart", func(ctx iris.Context) {
		var req struct {
			ProductID string `json:"product_id"`
			Quantity  int64  `json:"quantity"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		line, err := cartSvc.AddOrUpdate(ctx.Request().Context(), currentUserID(ctx), req.ProductID, req.Quantity)
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": line})
	})

	authAPI.Delete("/cart/{productId:string}", func(ctx iris.Context) {
		err := cartSvc.Remove(ctx.Request().Context(), currentUserID(ctx), ctx.Params().Get("productId"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "msg": "removed"})
	})

	// ---------- checkout ----------

	authAPI.Post("/checkout", middleware.CheckoutRateLimit(), func(ctx iris.Context) {
		idemKey := ctx.GetHeader("X-Idempotency-Key")
		o, err := checkoutSvc.PlaceOrder(ctx.Request().Context(), currentUserID(ctx), idemKey)
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- orders ----------

	authAPI.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.ListForUser(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Get("/orders/{id:string}", func(ctx iris.Context) {
		o, err := orderSvc.GetForUser(ctx.Request().Context(), currentUserID(ctx), ctx.Params().Get("id"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": o})
	})

	// ---------- favorites ----------

	authAPI.Get("/favorites", func(ctx iris.Context) {
		list, err := favoritesSvc.List(ctx.Request().Context(), currentUserID(ctx))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": list})
	})

	authAPI.Post("/favorites/{productId:string}/toggle", func(ctx iris.Context) {
		state, err := favoritesSvc.Toggle(ctx.Request().Context(), currentUserID(ctx), ctx.Params().Get("productId"))
		if err != nil {
			writeErr(ctx, err)
			return
		}
		ctx.JSON(iris.Map{"code": 0, "data": iris.Map{"favorited": state}})
	})
}
