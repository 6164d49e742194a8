package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/seo-insight/backend/analyzer"
	"github.com/seo-insight/backend/history"
	"github.com/seo-insight/backend/middleware"
	"github.com/seo-insight/backend/report"
	"github.com/seo-insight/backend/stats"
)

var (
	log         = logrus.New()
	seoAnalyzer *analyzer.Analyzer
	analysisLog *history.Log
	usageStats  *stats.Storage
)

func loadEnv() {
	// Try .env.development first (local development), then plain .env.
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Info("No .env file found, using environment variables")
		}
	}
}

func setupGinMode() {
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)
}

func setupLogger() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

func main() {
	loadEnv()
	setupGinMode()
	setupLogger()

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	var err error
	usageStats, err = stats.NewStorage(dataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize stats storage")
	}
	defer usageStats.Shutdown()

	analysisLog, err = history.Open(dataDir)
	if err != nil {
		log.WithError(err).Fatal("failed to open analysis history")
	}

	seoAnalyzer = analyzer.New(analyzer.Config{
		Logger: log,
		Stats:  usageStats,
	})

	rateLimiter := middleware.NewRateLimiter(2, 5) // 2 req/s, burst of 5

	r := gin.New()
	r.Use(middleware.ErrorHandler(log))
	r.Use(middleware.RequestLogger(log))
	r.Use(rateLimiter.RateLimit())
	r.Use(corsMiddleware())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", analyzeURL)
		api.POST("/analyze/bulk", analyzeBulk)
		api.POST("/compare", compareURLs)

		api.GET("/history", getHistory)
		api.DELETE("/history", clearHistory)

		api.GET("/statistics", getStatistics)
		api.GET("/export", exportReport)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	log.WithField("port", port).Info("server starting")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// statusFor maps pipeline error kinds onto HTTP statuses.
func statusFor(err error) int {
	kind, ok := analyzer.ErrKind(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case analyzer.KindValidation:
		return http.StatusBadRequest
	case analyzer.KindTimeout:
		return http.StatusGatewayTimeout
	case analyzer.KindFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func analyzeURL(c *gin.Context) {
	var request struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := seoAnalyzer.Analyze(c.Request.Context(), request.URL)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if err := analysisLog.Append(result.Profile.URL, result.Score, result.Profile.Title); err != nil {
		log.WithError(err).Warn("failed to record history entry")
	}

	c.JSON(http.StatusOK, result)
}

func analyzeBulk(c *gin.Context) {
	var request struct {
		URLs string `json:"urls" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var urls []string
	for _, line := range strings.Split(request.URLs, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			urls = append(urls, line)
		}
	}
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No URLs provided"})
		return
	}

	items := seoAnalyzer.AnalyzeBatch(c.Request.Context(), urls)
	c.JSON(http.StatusOK, gin.H{"results": items})
}

func compareURLs(c *gin.Context) {
	var request struct {
		First  string `json:"first" binding:"required"`
		Second string `json:"second" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	comparison, err := seoAnalyzer.Compare(c.Request.Context(), request.First, request.Second)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, comparison)
}

func getHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": analysisLog.Entries()})
}

func clearHistory(c *gin.Context) {
	if err := analysisLog.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func getStatistics(c *gin.Context) {
	current := usageStats.CurrentStats()
	response := gin.H{
		"analyses":         current.Analyses,
		"error_rate":       current.ErrorRate(),
		"average_duration": current.AverageDuration(),
	}
	if os.Getenv("DEV_MODE") == "true" {
		response["cache_hits"] = current.CacheHits
		response["cache_misses"] = current.CacheMisses
		response["months"] = usageStats.Months()
	}
	c.JSON(http.StatusOK, response)
}

func exportReport(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	result, err := seoAnalyzer.Analyze(c.Request.Context(), url)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("seo_report_%s", time.Now().Format("20060102_150405"))
	switch c.DefaultQuery("format", "json") {
	case "csv":
		csvData, err := report.CSV(result)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV report"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.csv", filename))
		c.Data(http.StatusOK, "text/csv", []byte(csvData))
	case "json":
		jsonData, err := report.JSON(result.Profile)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build JSON report"})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", filename))
		c.Data(http.StatusOK, "application/json", jsonData)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format, use csv or json"})
	}
}
