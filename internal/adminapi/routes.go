package adminapi

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/roxydev/roxy/internal/adminapi/docs" // swagger docs
)

// registerRoutes mounts the Swagger UI and the read-only /api/v1 surface.
// There is no write surface here: every registered route is a GET.
func registerRoutes(r *gin.Engine, h *Handler) {
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api/v1")
	api.GET("/health", h.Health)
	api.GET("/status", h.Status)
}
