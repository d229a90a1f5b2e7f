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

func TestCreateGift(t *testing.T) {
	testDB := setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventManager)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts", jsonBody(map[string]interface{}{
		"gift_name": "Arabian Falcon",
		"gift_id":   "GFT-001",
		"category":  "Falcons",
		"gender":    "Male",
		"weight":    1.2,
		"gift_additional_attributes": []map[string]string{
			{"attribute_name": "Color", "attribute_value": "White"},
		},
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createGift(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.NotEmpty(t, response["name"])
	assert.NotEmpty(t, response["barcode_value"])

	var gift models.Gift
	testDB.Where("gift_id = ?", "GFT-001").First(&gift)
	assert.Equal(t, models.GiftAvailable, gift.Status)
	assert.Len(t, gift.BarcodeValue, 8)
	assert.NotEmpty(t, gift.Barcode)

	var attrCount int64
	testDB.Model(&models.GiftAttribute{}).Where("gift_id = ?", gift.ID).Count(&attrCount)
	assert.Equal(t, int64(1), attrCount)
}

func TestCreateGiftManualBarcode(t *testing.T) {
	testDB := setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts", jsonBody(map[string]interface{}{
		"gift_name":      "Imported Saker",
		"import_barcode": true,
		"barcode_value":  "IMP-12345",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createGift(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("barcode_value = ?", "IMP-12345").First(&gift)
	assert.True(t, gift.ImportBarcode)
}

func TestCreateGiftManualBarcodeDuplicate(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{
		Name: "existing", GiftName: "Existing", Status: models.GiftAvailable,
		BarcodeValue: "IMP-12345",
	})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts", jsonBody(map[string]interface{}{
		"gift_name":      "Another",
		"import_barcode": true,
		"barcode_value":  "IMP-12345",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createGift(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateGiftImportWithoutValue(t *testing.T) {
	setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts", jsonBody(map[string]interface{}{
		"gift_name":      "No Value",
		"import_barcode": true,
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createGift(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGiftForbiddenForCoordinator(t *testing.T) {
	setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts", jsonBody(map[string]interface{}{
		"gift_name": "Nope",
	}))
	c.Request.Header.Set("Content-Type", "application/json")

	createGift(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetGifts(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon A", Status: models.GiftAvailable, BarcodeValue: "00000001", Category: "Falcons"})
	testDB.Create(&models.Gift{Name: "g2", GiftName: "Falcon B", Status: models.GiftIssued, BarcodeValue: "00000002", Category: "Falcons"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("GET", "/api/v1/gifts?status=Available", nil)

	getGifts(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, float64(1), response["total"])
	data := response["data"].([]interface{})
	assert.Equal(t, 1, len(data))
	assert.Equal(t, "Falcon A", data[0].(map[string]interface{})["gift_name"])
}

func TestGetGiftNotFound(t *testing.T) {
	setupTest()

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("GET", "/api/v1/gifts/nope", nil)
	c.Params = gin.Params{gin.Param{Key: "name", Value: "nope"}}

	getGift(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteIssuedGiftBlocked(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftIssued, BarcodeValue: "00000001"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/gifts/g1", nil)
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	deleteGift(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteGiftFreesBarcodeValue(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("DELETE", "/api/v1/gifts/g1", nil)
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	deleteGift(c)

	assert.Equal(t, http.StatusOK, w.Code)

	// Soft deleted, and the value is reusable by a new gift.
	var count int64
	testDB.Model(&models.Gift{}).Where("name = ?", "g1").Count(&count)
	assert.Equal(t, int64(0), count)

	err := testDB.Create(&models.Gift{
		Name: "g2", GiftName: "Falcon 2", Status: models.GiftAvailable, BarcodeValue: "00000001",
	}).Error
	assert.NoError(t, err)
}

func TestGetGiftByCode(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "12345678"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("GET", "/api/v1/gifts/by-code/12345678", nil)
	c.Params = gin.Params{gin.Param{Key: "value", Value: "12345678"}}

	getGiftByCode(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "g1", response["name"])
	assert.Equal(t, "Falcon", response["gift_name"])
}

func TestUpdateGiftBarcodeManual(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts/g1/barcode", jsonBody(map[string]interface{}{
		"update_type":       "manual",
		"new_barcode_value": "NEW-99999",
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	updateGiftBarcode(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("name = ?", "g1").First(&gift)
	assert.Equal(t, "NEW-99999", gift.BarcodeValue)
	assert.True(t, gift.ImportBarcode)
}

func TestUpdateGiftBarcodeAuto(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon A", Status: models.GiftAvailable, BarcodeValue: "00000001"})
	testDB.Create(&models.Gift{Name: "g2", GiftName: "Falcon B", Status: models.GiftAvailable, BarcodeValue: "00000002"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts/g1/barcode", jsonBody(map[string]interface{}{
		"update_type": "auto",
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	updateGiftBarcode(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("name = ?", "g1").First(&gift)
	assert.NotEqual(t, "00000001", gift.BarcodeValue)
	assert.Len(t, gift.BarcodeValue, 8)
	assert.False(t, gift.ImportBarcode)

	// The resampled value is unique among live gifts.
	var count int64
	testDB.Model(&models.Gift{}).Where("barcode_value = ?", gift.BarcodeValue).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateGiftBarcodeIssuedBlocked(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftIssued, BarcodeValue: "00000001"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts/g1/barcode", jsonBody(map[string]interface{}{
		"update_type": "auto",
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	updateGiftBarcode(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateGiftBarcodeDuplicateManual(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon A", Status: models.GiftAvailable, BarcodeValue: "00000001"})
	testDB.Create(&models.Gift{Name: "g2", GiftName: "Falcon B", Status: models.GiftAvailable, BarcodeValue: "00000002"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleAdmin)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts/g2/barcode", jsonBody(map[string]interface{}{
		"update_type":       "manual",
		"new_barcode_value": "00000001",
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g2"}}

	updateGiftBarcode(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRegenerateGiftBarcode(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "12345678"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventCoordinator)
	c.Request = httptest.NewRequest("POST", "/api/v1/gifts/g1/barcode/regenerate", nil)
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	regenerateGiftBarcode(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("name = ?", "g1").First(&gift)
	assert.NotEmpty(t, gift.Barcode)
}

func TestUpdateGift(t *testing.T) {
	testDB := setupTest()
	testDB.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001"})

	w := httptest.NewRecorder()
	c := testContext(w, identity.RoleEventManager)
	c.Request = httptest.NewRequest("PATCH", "/api/v1/gifts/g1", jsonBody(map[string]interface{}{
		"gift_name": "Renamed Falcon",
		"weight":    2.5,
	}))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{gin.Param{Key: "name", Value: "g1"}}

	updateGift(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var gift models.Gift
	testDB.Where("name = ?", "g1").First(&gift)
	assert.Equal(t, "Renamed Falcon", gift.GiftName)
	assert.Equal(t, 2.5, gift.Weight)
	assert.Equal(t, "00000001", gift.BarcodeValue)
}
