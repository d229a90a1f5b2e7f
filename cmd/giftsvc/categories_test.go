package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gift-tracker/pkg/identity"
	"gift-tracker/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCreateCategory(t *testing.T) {
	testDB := setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventManager)
	c.Request = httptest.NewRequest("POST", "/api/v1/categories", jsonBody(map[string]interface{}{
		"category_name": "Falcons",
		"description":   "Hunting falcons",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createCategory(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var category models.GiftCategory
	testDB.Where("category_name = ?", "Falcons").First(&category)
	assert.Equal(t, "testuser", category.CreatedBy)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.GiftCategory{Name: "c1", CategoryName: "Falcons"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventManager)
	c.Request = httptest.NewRequest("POST", "/api/v1/categories", jsonBody(map[string]interface{}{
		"category_name": "Falcons",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createCategory(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateCategoryRenamesGifts(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.GiftCategory{Name: "c1", CategoryName: "Falcons"})
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001", Category: "Falcons"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventManager)
	c.Request = httptest.NewRequest("PATCH", "/api/v1/categories/c1", jsonBody(map[string]interface{}{
		"category_name": "Hunting Falcons",
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "c1"}}

	updateCategory(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("name = ?", "g1").First(&gift)
	assert.Equal(t, "Hunting Falcons", gift.Category)
}

func TestDeleteCategoryInUse(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.GiftCategory{Name: "c1", CategoryName: "Falcons"})
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001", Category: "Falcons"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/categories/c1", nil)
	c.Params = gin.Params{gin.Param{Key: "name", Value: "c1"}}

	deleteCategory(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetCategories(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.GiftCategory{Name: "c1", CategoryName: "Falcons"})
	testDB.Create(&models.GiftCategory{Name: "c2", CategoryName: "Camels"})
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001", Category: "Falcons"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("GET", "/api/v1/categories", nil)

	getCategories(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].([]interface{})
	assert.Equal(t, 2, len(data))
	// Ordered by name, Camels first.
	assert.Equal(t, "Camels", data[0].(map[string]interface{})["category_name"])
	assert.Equal(t, float64(1), data[1].(map[string]interface{})["gift_count"])
}
