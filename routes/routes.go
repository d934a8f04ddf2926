package routes

import (
	"github.com/gin-gonic/gin"

	"dakotahome/handlers"
)

// HandlerBundle collects the handlers the router wires up.
type HandlerBundle struct {
	Chat    *handlers.ChatHandler
	Threads *handlers.ThreadHandler
	Booking *handlers.BookingHandler
}

// RegisterRoutes registers all endpoints for the booking agent.
func RegisterRoutes(r *gin.Engine, h *HandlerBundle) {
	r.GET("/health", handlers.Health)

	api := r.Group("/api")
	{
		api.POST("/chat", h.Chat.HandleChat)

		api.GET("/threads", h.Threads.ListThreads)
		api.GET("/threads/:threadID", h.Threads.GetThread)
		api.DELETE("/threads/:threadID", h.Threads.DeleteThread)
		api.GET("/threads/:threadID/items", h.Threads.ListThreadItems)
		api.GET("/threads/:threadID/items/:itemID", h.Threads.GetThreadItem)
		api.DELETE("/threads/:threadID/items/:itemID", h.Threads.DeleteThreadItem)
		api.GET("/threads/:threadID/draft", h.Threads.GetDraft)

		// Direct tool surface for the booking widget.
		api.POST("/availability", h.Booking.CheckAvailability)
		api.POST("/quote", h.Booking.GetQuote)
		api.POST("/checkout", h.Booking.CreateCheckout)
	}
}
