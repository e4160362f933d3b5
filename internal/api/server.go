package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/poller"
	"newsagg/internal/query"
	"newsagg/internal/security"
	"newsagg/internal/service"
	"newsagg/internal/storage"
	"newsagg/internal/web"

	"github.com/gin-gonic/gin"
)

// userIDHeader carries the authenticated caller's identity, set by the
// surrounding auth layer in front of this service.
const userIDHeader = "X-User-ID"

type Server struct {
	router        *gin.Engine
	articles      *service.ArticleService
	preferences   *service.PreferenceService
	poller        *poller.Poller
	storage       storage.Storage
	port          int
	swaggerServer *web.SwaggerServer
}

func NewServer(articles *service.ArticleService, preferences *service.PreferenceService, p *poller.Poller, st storage.Storage, cfg *config.Config) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	// Setup security middleware
	securityConfig := &security.SecurityConfig{
		EnableRateLimit:       cfg.Security.EnableRateLimit,
		RateLimitPerSecond:    cfg.Security.RateLimitPerSecond,
		RateLimitBurst:        cfg.Security.RateLimitBurst,
		EnableCORS:            cfg.Security.EnableCORS,
		AllowedOrigins:        cfg.Security.AllowedOrigins,
		EnableSecurityHeaders: cfg.Security.EnableSecurityHeaders,
		MaxRequestSize:        cfg.Security.MaxRequestSize,
		EnableRequestID:       cfg.Security.EnableRequestID,
	}
	security.SetupSecurityMiddleware(router, securityConfig)

	server := &Server{
		router:        router,
		articles:      articles,
		preferences:   preferences,
		poller:        p,
		storage:       st,
		port:          cfg.Port,
		swaggerServer: web.NewSwaggerServer(cfg.EnableSwagger),
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	// Health check
	s.router.GET("/health", s.healthCheck)

	// API routes
	api := s.router.Group("/api/v1")
	{
		api.GET("/articles", s.listArticles)
		api.GET("/articles/:id", s.getArticle)

		user := api.Group("", requireUserID())
		{
			user.GET("/preferences", s.getPreferences)
			user.POST("/preferences", s.setPreference)
			user.GET("/feed", s.getPersonalizedFeed)
		}

		// Ingestion control endpoints
		api.POST("/ingest", s.runIngestion)
		api.GET("/ingest/status", s.getIngestStatus)
	}

	// Register swagger UI
	s.swaggerServer.RegisterRoutes(s.router)
}

func (s *Server) Start() error {
	return s.router.Run(":" + strconv.Itoa(s.port))
}

// StartWithContext runs the server until the context is cancelled.
func (s *Server) StartWithContext(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(s.port),
		Handler: s.router,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %v", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// requireUserID rejects requests that carry no caller identity.
func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(userIDHeader) == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Missing user identity",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "news-aggregator",
		"poller_active": s.poller.IsRunning(),
	})
}

// listArticles handles GET /api/v1/articles with optional keyword,
// date_from/date_to, category, source and page parameters.
func (s *Server) listArticles(c *gin.Context) {
	q, err := query.ParseListing(c.Request.URL.Query())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	page, err := s.articles.List(q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve articles",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, page)
}

func (s *Server) getArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid article id",
		})
		return
	}

	article, err := s.articles.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Article not found",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve article",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, article)
}

func (s *Server) getPreferences(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)

	prefs, err := s.preferences.List(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve preferences",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"preferences": prefs,
		"count":       len(prefs),
	})
}

type setPreferenceRequest struct {
	PreferenceType  string `json:"preference_type"`
	PreferenceValue string `json:"preference_value"`
}

func (s *Server) setPreference(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)

	var req setPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	err := s.preferences.Set(userID, req.PreferenceType, req.PreferenceValue)
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to save preference",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Preference saved successfully",
	})
}

func (s *Server) getPersonalizedFeed(c *gin.Context) {
	userID := c.GetHeader(userIDHeader)

	page := 1
	if pageStr := c.Query("page"); pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid page: must be a positive integer",
			})
			return
		}
		page = parsed
	}

	feed, err := s.preferences.Feed(userID, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch personalized news feed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (s *Server) runIngestion(c *gin.Context) {
	results := s.poller.ForceRun(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"message": "Ingestion completed",
		"results": results,
	})
}

func (s *Server) getIngestStatus(c *gin.Context) {
	status := gin.H{
		"poller_active": s.poller.IsRunning(),
		"last_results":  s.poller.LastResults(),
	}
	if lastRun := s.poller.LastRun(); !lastRun.IsZero() {
		status["last_run"] = lastRun
	}

	if stats, err := s.storage.GetDatabaseStats(); err == nil {
		status["storage"] = stats
	}

	c.JSON(http.StatusOK, status)
}
