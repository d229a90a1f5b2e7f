package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gift-tracker/internal/cache"
	"gift-tracker/internal/middleware"
	"gift-tracker/pkg/database"
	"gift-tracker/pkg/renderqueue"
	"gift-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	db          *gorm.DB
	fileStore   *storage.LocalStore
	redisCache  *cache.Redis
	renderQueue = renderqueue.NewQueue()
)

func main() {
	log.Println("Starting gift service...")

	db = database.InitGiftDB()
	fileStore = storage.NewLocalStore()

	var err error
	redisCache, err = cache.NewRedis()
	if err != nil {
		log.Printf("Redis unavailable, idempotency replay disabled: %v", err)
		redisCache = nil
	}

	server := gin.Default()
	server.Use(middleware.Idempotency(redisCache))

	api := server.Group("/api/v1", middleware.RequirePrincipal(db))

	api.GET("/gifts", getGifts)
	api.GET("/gifts/:name", getGift)
	api.POST("/gifts", createGift)
	api.PATCH("/gifts/:name", updateGift)
	api.DELETE("/gifts/:name", deleteGift)
	api.GET("/gifts/by-code/:value", getGiftByCode)
	api.POST("/gifts/:name/issue", issueGiftDirect)
	api.POST("/gifts/:name/barcode", updateGiftBarcode)
	api.POST("/gifts/:name/barcode/regenerate", regenerateGiftBarcode)
	api.GET("/gifts/:name/dispatch-history", getGiftDispatchHistory)
	api.POST("/gifts/barcodes/retry-renders", retryPendingRenders)

	api.GET("/gift-issues", getGiftIssues)
	api.GET("/gift-issues/:name", getGiftIssue)
	api.POST("/gift-issues", createGiftIssue)
	api.PATCH("/gift-issues/:name", updateGiftIssue)
	api.DELETE("/gift-issues/:name", deleteGiftIssue)
	api.POST("/gift-issues/:name/delivery-status", updateGiftDeliveryStatus)

	api.GET("/gift-interests", getGiftInterests)
	api.GET("/gift-interests/:name", getGiftInterest)
	api.POST("/gift-interests", createGiftInterest)
	api.PATCH("/gift-interests/:name", updateGiftInterest)
	api.DELETE("/gift-interests/:name", deleteGiftInterest)

	api.GET("/recipients", getRecipients)
	api.GET("/recipients/:name", getRecipient)
	api.POST("/recipients/resolve", resolveRecipient)
	api.PATCH("/recipients/:name", updateRecipient)
	api.DELETE("/recipients/:name", deleteRecipient)

	api.GET("/categories", getCategories)
	api.POST("/categories", createCategory)
	api.PATCH("/categories/:name", updateCategory)
	api.DELETE("/categories/:name", deleteCategory)

	api.GET("/users", getUsers)
	api.POST("/users", createUser)
	api.PATCH("/users/:name", updateUser)
	api.PATCH("/users/:name/password", updateUserPassword)
	api.DELETE("/users/:name", deleteUser)
	api.GET("/roles", getAvailableRoles)
	api.GET("/me", getUserProfile)
	api.PATCH("/me", updateUserProfile)

	api.GET("/dashboard/stats", getDashboardStats)
	api.GET("/dashboard/user-stats", getUserStats)

	api.GET("/reports/interest-shows", getInterestShowsReport)
	api.GET("/reports/dispatched-gifts", getDispatchedGiftsReport)
	api.GET("/reports/pending-delivery", getPendingDeliveryReport)
	api.GET("/reports/barcode-print", getBarcodePrintReport)

	api.POST("/files", uploadFile)
	api.GET("/files/download", downloadFile)

	server.Static("/files", filepath.Join(fileStore.Dir, "files"))
	server.GET("/manage/health", healthCheck)

	port := getEnv("PORT", "8080")
	log.Printf("Gift service starting on :%s", port)
	if err := server.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func healthCheck(ctx *gin.Context) {
	sqlDB, err := db.DB()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.Ping(); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func pageParams(c *gin.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

func totalPages(total int64, limit int) int64 {
	return (total + int64(limit) - 1) / int64(limit)
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func fmtTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
