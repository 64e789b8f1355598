package handler

import (
	"auctionsystem/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// SetupRouter 配置路由
func SetupRouter(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *gin.Engine {
	// 设置 gin 为发布模式（减少日志输出）
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// 注册中间件
	r.Use(RecoveryMiddleware())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	// 创建处理器
	h := NewHandler(db, rdb, cfg)

	// API 路由组
	api := r.Group("/api/v1")
	{
		// 用户相关
		user := api.Group("/user")
		{
			user.POST("/register", h.Register)
			user.GET("/detail", h.GetUser)
		}

		// 账户相关
		account := api.Group("/account")
		{
			account.GET("/balance", h.GetBalance)
			account.POST("/recharge", h.Recharge)
			account.GET("/transactions", h.ListLedger)
		}

		// 拍品相关
		auction := api.Group("/auction")
		{
			auction.POST("/create", h.CreateAuction)
			auction.GET("/detail", h.GetAuction)
			auction.GET("/list", h.ListAuctions)
			auction.GET("/bids", h.ListBids)
			auction.POST("/verify", h.VerifyAuction)
			auction.POST("/delete", h.DeleteAuction)
		}

		// 出价相关
		bid := api.Group("/bid")
		{
			bid.POST("/place", h.PlaceBid)
		}

		// 租赁相关
		rental := api.Group("/rental")
		{
			rental.GET("/list", h.ListRentalProducts)
			rental.POST("/product/create", h.CreateRentalProduct)
			rental.POST("/reserve", h.ReserveRental)
			rental.POST("/return", h.ReturnRental)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
