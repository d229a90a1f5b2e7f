package main

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"

	"gift-tracker/internal/middleware"
	"gift-tracker/pkg/database"
	"gift-tracker/pkg/identity"
	"gift-tracker/pkg/renderqueue"
	"gift-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}
	if err := database.Migrate(testDB); err != nil {
		panic(err)
	}
	return testDB
}

// setupTest wires the package globals to fresh test instances.
func setupTest() *gorm.DB {
	gin.SetMode(gin.TestMode)
	testDB := setupTestDB()
	db = testDB

	dir, err := os.MkdirTemp("", "giftsvc-test")
	if err != nil {
		panic(err)
	}
	fileStore = &storage.LocalStore{Dir: dir, BaseURL: "http://localhost:8080"}
	renderQueue = renderqueue.NewQueue()
	redisCache = nil

	return testDB
}

func testContext(w *httptest.ResponseRecorder, role identity.Role) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.PrincipalKey, identity.Principal{
		UserID:   "testuser",
		Username: "testuser",
		Role:     role,
	})
	return c
}

func jsonBody(body map[string]interface{}) *bytes.Buffer {
	raw, _ := json.Marshal(body)
	return bytes.NewBuffer(raw)
}
