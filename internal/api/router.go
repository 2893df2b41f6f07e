package api

import (
	"net/http" // HTTP status codes

	"finance_tracker/internal/auth"       // Identity verification
	"finance_tracker/internal/middleware" // Middleware

	"github.com/gin-gonic/gin" // Gin web framework
)

// Version is reported by the service info endpoint
const Version = "1.0.0"

// RouterConfig holds the router's collaborators
type RouterConfig struct {
	Verifier       auth.Verifier      // Validates bearer credentials
	Service        TransactionService // Transaction operations
	AllowedOrigins []string           // CORS allow-list, "*" for any
	TrustedProxies []string           // Proxies trusted for client IP
}

// NewRouter builds the gin engine with every route mounted under "/" and "/api"
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	r := gin.New() // Gin router instance
	r.Use(middleware.RequestLogger(), middleware.Recovery(), middleware.CORS(cfg.AllowedOrigins))

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	r.GET("/", infoHandler)                                                                  // Service info
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }) // Liveness

	for _, prefix := range []string{"", "/api"} {
		// Transaction routes (protected by the access guard)
		txGroup := r.Group(prefix + "/transactions")
		txGroup.Use(middleware.Authenticate(cfg.Verifier))
		txGroup.GET("", ListTransactionsHandler(cfg.Service))         // List endpoint
		txGroup.POST("", CreateTransactionHandler(cfg.Service))       // Create endpoint
		txGroup.GET("/summary", SummaryHandler(cfg.Service))          // Summary endpoint
		txGroup.DELETE("/:id", DeleteTransactionHandler(cfg.Service)) // Delete endpoint
	}

	// Unknown routes
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "message": "The requested endpoint does not exist"})
	})
	return r, nil
}

func infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Personal Finance Tracker API",
		"version": Version,
		"endpoints": gin.H{
			"transactions": "/api/transactions",
			"summary":      "/api/transactions/summary",
		},
	})
}
