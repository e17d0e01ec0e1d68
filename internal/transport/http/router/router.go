package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sweetshop/internal/core/auth"
	"sweetshop/internal/domain"
	"sweetshop/internal/transport/http/handler"
	mdw "sweetshop/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, authH *handler.AuthHandler, sweetH *handler.SweetHandler) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "OK"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authH.Register)
	authGroup.POST("/login", authH.Login)

	// 公开读
	sweets := api.Group("/sweets")
	sweets.GET("", sweetH.List)
	sweets.GET("/search", sweetH.Search)

	// 登录即可
	protected := sweets.Group("")
	protected.Use(mdw.AuthJWT(jwter, ""))
	protected.POST("/:id/purchase", sweetH.Purchase)

	// 仅 ADMIN
	admin := sweets.Group("")
	admin.Use(mdw.AuthJWT(jwter, domain.RoleAdmin))
	admin.POST("", sweetH.Create)
	admin.POST("/:id/restock", sweetH.Restock)
	admin.PUT("/:id", sweetH.Update)
	admin.DELETE("/:id", sweetH.Delete)

	return r
}
