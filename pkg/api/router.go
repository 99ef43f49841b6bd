package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/urmzd/remotehub/pkg/api/handlers"
	"github.com/urmzd/remotehub/pkg/device/schema"
	"github.com/urmzd/remotehub/pkg/hub"
)

// Router holds the Gin engine and dependencies
type Router struct {
	engine    *gin.Engine
	hub       *hub.Hub
	validator *schema.Validator
}

// NewRouter creates a new API router
func NewRouter(h *hub.Hub, validator *schema.Validator) *Router {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	SetupMiddleware(engine)

	router := &Router{
		engine:    engine,
		hub:       h,
		validator: validator,
	}

	router.setupRoutes()

	return router
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Swagger UI
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.engine.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Health check at root
	healthHandler := handlers.NewHealthHandler(r.hub)
	r.engine.GET("/health", healthHandler.Health)

	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)

		// Devices
		devicesHandler := handlers.NewDevicesHandler(r.hub, r.validator)
		commandsHandler := handlers.NewCommandsHandler(r.hub, r.validator)
		devices := v1.Group("/devices")
		{
			devices.GET("", devicesHandler.ListDevices)
			devices.POST("", devicesHandler.CreateDevice)
			devices.GET("/:id", devicesHandler.GetDevice)
			devices.PATCH("/:id", devicesHandler.UpdateDevice)
			devices.DELETE("/:id", devicesHandler.DeleteDevice)

			// Commands
			devices.POST("/:id/commands", commandsHandler.AddCommand)
			devices.DELETE("/:id/commands/:name", commandsHandler.DeleteCommand)
			devices.POST("/:id/commands/:name/test", commandsHandler.TestCommand)
			devices.POST("/:id/learn", commandsHandler.Learn)
		}

		// Generation and learn history
		generateHandler := handlers.NewGenerateHandler(r.hub)
		v1.POST("/generate", generateHandler.Generate)
		v1.GET("/learn/sessions", generateHandler.ListSessions)

		// Transceivers
		transceiversHandler := handlers.NewTransceiversHandler(r.hub)
		v1.GET("/transceivers", transceiversHandler.ListTransceivers)
		v1.POST("/transceivers", transceiversHandler.CreateTransceiver)
	}
}

// Handler returns the HTTP handler, for embedding and tests
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
