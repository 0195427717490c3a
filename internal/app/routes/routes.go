package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krswitch/backend/internal/app/controllers"
	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	barterController *controllers.BarterController,
	catalogController *controllers.CatalogController,
	wsHandler *websocket.Handler,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// Offer lifecycle routes
	offers := v1.Group("/offers")
	{
		offers.GET("", barterController.ListOpenOffers)
		offers.POST("", barterController.CreateOffer)
		offers.GET("/:id", barterController.GetOffer)
		offers.POST("/:id/take", barterController.TakeOffer)
		offers.DELETE("/:id", barterController.CancelOffer)
	}

	// Read-only catalog routes
	v1.GET("/users", catalogController.GetAllUsers)
	v1.GET("/sections", catalogController.GetAllSections)
	v1.GET("/enrollments", catalogController.GetEnrollments)
	v1.GET("/opportunities", catalogController.GetOpportunities)

	// Real-time event stream
	v1.GET("/ws", wsHandler.HandleConnection)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.APIResponse{
			Data:      dto.SuccessResponse{Message: "ok"},
			Timestamp: time.Now(),
		})
	})
}
