package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/barcode"
	"gift-tracker/pkg/models"
	"gift-tracker/pkg/renderqueue"
	"gift-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type attributeRequest struct {
	AttributeName  string `json:"attribute_name"`
	AttributeValue string `json:"attribute_value"`
}

func getGifts(c *gin.Context) {
	page, limit, offset := pageParams(c, 20)

	query := db.Model(&models.Gift{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"gift_name LIKE ? OR barcode_value LIKE ? OR description LIKE ? OR category LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	order := orderClause(c.Query("order_by"),
		[]string{"gift_name", "status", "category", "barcode_value", "created_at", "updated_at"},
		"created_at", c.DefaultQuery("sort_order", "desc"))

	var gifts []models.Gift
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&gifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(gifts))
	for i, g := range gifts {
		var images []models.GiftImage
		db.Where("gift_id = ?", g.ID).Order("idx").Find(&images)
		items[i] = giftJSON(g, images, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func getGift(c *gin.Context) {
	name := c.Param("name")

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}

	var images []models.GiftImage
	db.Where("gift_id = ?", gift.ID).Order("idx").Find(&images)
	var attributes []models.GiftAttribute
	db.Where("gift_id = ?", gift.ID).Find(&attributes)

	issueHistory := gin.H{}
	if gift.Status == models.GiftIssued && gift.OwnerFullName != "" {
		issueHistory = gin.H{
			"gift_recipient":        gift.GiftRecipient,
			"owner_full_name":       gift.OwnerFullName,
			"coordinator_full_name": gift.CoordinatorFullName,
			"emirates_id":           gift.EmiratesID,
			"mobile_number":         gift.MobileNumber,
			"issued_date":           fmtDate(gift.IssuedDate),
			"person_photo":          fileStore.ResolveURL(gift.PersonPhoto),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"gift":          giftJSON(gift, images, attributes),
		"issue_history": issueHistory,
	})
}

func createGift(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}

	var req struct {
		GiftName      string             `json:"gift_name" binding:"required"`
		GiftID        string             `json:"gift_id"`
		Category      string             `json:"category"`
		Gender        string             `json:"gender"`
		Breed         string             `json:"breed"`
		Weight        float64            `json:"weight"`
		FarmName      string             `json:"farm_name"`
		Description   string             `json:"description"`
		ImportBarcode bool               `json:"import_barcode"`
		BarcodeValue  string             `json:"barcode_value"`
		Images        []storage.ImageRef `json:"gift_images"`
		Attributes    []attributeRequest `json:"gift_additional_attributes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if req.ImportBarcode && req.BarcodeValue == "" {
		respondError(c, apperrors.Validationf("Barcode ID is required when Import Barcode is checked"))
		return
	}
	if req.GiftID != "" {
		var count int64
		db.Model(&models.Gift{}).Where("gift_id = ?", req.GiftID).Count(&count)
		if count > 0 {
			respondError(c, apperrors.Conflictf("Gift Code %s already exists", req.GiftID))
			return
		}
	}

	imageRefs := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		if img.IsZero() {
			continue
		}
		ref, err := img.Resolve(fileStore, false)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid gift image: %v", err))
			return
		}
		imageRefs = append(imageRefs, ref)
	}

	mode := barcode.ModeAuto
	if req.ImportBarcode {
		mode = barcode.ModeManual
	}

	gift := models.Gift{
		Name:          uuid.New().String(),
		GiftName:      req.GiftName,
		GiftID:        req.GiftID,
		Description:   req.Description,
		Category:      req.Category,
		Gender:        req.Gender,
		Breed:         req.Breed,
		Weight:        req.Weight,
		FarmName:      req.FarmName,
		Status:        models.GiftAvailable,
		ImportBarcode: req.ImportBarcode,
	}

	for {
		value, err := barcode.Allocate(db, mode, req.BarcodeValue, "")
		if err != nil {
			respondError(c, err)
			return
		}
		gift.BarcodeValue = value

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&gift).Error; err != nil {
				return err
			}
			for i, ref := range imageRefs {
				if err := tx.Create(&models.GiftImage{GiftID: gift.ID, Image: ref, Idx: i}).Error; err != nil {
					return err
				}
			}
			for _, attr := range req.Attributes {
				if attr.AttributeName == "" || attr.AttributeValue == "" {
					continue
				}
				if err := tx.Create(&models.GiftAttribute{
					GiftID:         gift.ID,
					AttributeName:  attr.AttributeName,
					AttributeValue: attr.AttributeValue,
				}).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err == nil {
			break
		}
		if barcode.IsUniquenessViolation(err) {
			if mode == barcode.ModeManual {
				respondError(c, apperrors.Conflictf("Barcode ID %s already exists", gift.BarcodeValue))
				return
			}
			// A concurrent allocation won this value; resample.
			gift.ID = 0
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create gift"})
		return
	}

	// Label rendering is best-effort: the gift is persisted either way.
	renderAndStoreLabel(&gift)

	c.JSON(http.StatusOK, gin.H{
		"name":          gift.Name,
		"gift_id":       gift.GiftID,
		"barcode_value": gift.BarcodeValue,
		"barcode":       fileStore.ResolveURL(gift.Barcode),
		"message":       "Gift created successfully",
	})
}

func updateGift(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		GiftName    *string             `json:"gift_name"`
		GiftID      *string             `json:"gift_id"`
		Category    *string             `json:"category"`
		Gender      *string             `json:"gender"`
		Breed       *string             `json:"breed"`
		Weight      *float64            `json:"weight"`
		FarmName    *string             `json:"farm_name"`
		Description *string             `json:"description"`
		Images      *[]storage.ImageRef `json:"gift_images"`
		Attributes  *[]attributeRequest `json:"gift_additional_attributes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}

	if req.GiftID != nil && *req.GiftID != "" && *req.GiftID != gift.GiftID {
		var count int64
		db.Model(&models.Gift{}).Where("gift_id = ? AND name != ?", *req.GiftID, name).Count(&count)
		if count > 0 {
			respondError(c, apperrors.Conflictf("Gift Code %s already exists", *req.GiftID))
			return
		}
	}

	if req.GiftName != nil {
		gift.GiftName = *req.GiftName
	}
	if req.GiftID != nil {
		gift.GiftID = *req.GiftID
	}
	if req.Category != nil {
		gift.Category = *req.Category
	}
	if req.Gender != nil {
		gift.Gender = *req.Gender
	}
	if req.Breed != nil {
		gift.Breed = *req.Breed
	}
	if req.Weight != nil {
		gift.Weight = *req.Weight
	}
	if req.FarmName != nil {
		gift.FarmName = *req.FarmName
	}
	if req.Description != nil {
		gift.Description = *req.Description
	}
	// Barcode fields are not updateable here; see the barcode endpoints.

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&gift).Error; err != nil {
			return err
		}
		if req.Attributes != nil {
			if err := tx.Where("gift_id = ?", gift.ID).Delete(&models.GiftAttribute{}).Error; err != nil {
				return err
			}
			for _, attr := range *req.Attributes {
				if attr.AttributeName == "" || attr.AttributeValue == "" {
					continue
				}
				if err := tx.Create(&models.GiftAttribute{
					GiftID:         gift.ID,
					AttributeName:  attr.AttributeName,
					AttributeValue: attr.AttributeValue,
				}).Error; err != nil {
					return err
				}
			}
		}
		if req.Images != nil {
			if err := tx.Where("gift_id = ?", gift.ID).Delete(&models.GiftImage{}).Error; err != nil {
				return err
			}
			for i, img := range *req.Images {
				if img.IsZero() {
					continue
				}
				ref, err := img.Resolve(fileStore, false)
				if err != nil {
					return apperrors.Validationf("invalid gift image: %v", err)
				}
				if err := tx.Create(&models.GiftImage{GiftID: gift.ID, Image: ref, Idx: i}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": gift.Name, "message": "Gift updated successfully"})
}

func deleteGift(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}
	if gift.Status == models.GiftIssued {
		respondError(c, apperrors.Conflictf("Cannot delete an issued gift"))
		return
	}

	// Soft delete: the record is cancelled, not physically removed, and its
	// barcode value leaves the live uniqueness scope.
	if err := db.Delete(&gift).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gift deleted successfully"})
}

func getGiftByCode(c *gin.Context) {
	value := c.Param("value")

	var gift models.Gift
	if err := db.Where("barcode_value = ?", value).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("No gift found with this code"))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":            gift.Name,
		"gift_name":       gift.GiftName,
		"category":        gift.Category,
		"status":          gift.Status,
		"barcode_value":   gift.BarcodeValue,
		"owner_full_name": gift.OwnerFullName,
		"issued_date":     fmtDate(gift.IssuedDate),
		"gender":          gift.Gender,
		"breed":           gift.Breed,
		"weight":          gift.Weight,
		"farm_name":       gift.FarmName,
	})
}

func updateGiftBarcode(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		UpdateType      string `json:"update_type" binding:"required"`
		NewBarcodeValue string `json:"new_barcode_value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.UpdateType != "auto" && req.UpdateType != "manual" {
		respondError(c, apperrors.Validationf("invalid update type, must be 'auto' or 'manual'"))
		return
	}

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}
	if gift.Status == models.GiftIssued {
		respondError(c, apperrors.Conflictf("Cannot update barcode for issued gifts"))
		return
	}

	oldValue := gift.BarcodeValue

	mode := barcode.ModeAuto
	if req.UpdateType == "manual" {
		mode = barcode.ModeManual
	}
	gift.ImportBarcode = mode == barcode.ModeManual
	for {
		value, err := barcode.Allocate(db, mode, req.NewBarcodeValue, gift.Name)
		if err != nil {
			respondError(c, err)
			return
		}
		gift.BarcodeValue = value

		err = db.Save(&gift).Error
		if err == nil {
			break
		}
		if barcode.IsUniquenessViolation(err) {
			if mode == barcode.ModeManual {
				respondError(c, apperrors.Conflictf("Barcode ID %s already exists", value))
				return
			}
			// A concurrent allocation won this value; resample.
			continue
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	renderAndStoreLabel(&gift)

	c.JSON(http.StatusOK, gin.H{
		"name":              gift.Name,
		"barcode":           fileStore.ResolveURL(gift.Barcode),
		"barcode_value":     gift.BarcodeValue,
		"old_barcode_value": oldValue,
		"message":           fmt.Sprintf("Barcode updated successfully from '%s' to '%s'", oldValue, gift.BarcodeValue),
	})
}

func regenerateGiftBarcode(c *gin.Context) {
	name := c.Param("name")

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}
	if gift.BarcodeValue == "" {
		respondError(c, apperrors.Validationf("no barcode value found for this gift"))
		return
	}

	renderAndStoreLabel(&gift)

	c.JSON(http.StatusOK, gin.H{
		"name":          gift.Name,
		"barcode":       fileStore.ResolveURL(gift.Barcode),
		"barcode_value": gift.BarcodeValue,
		"message":       "Barcode regenerated successfully",
	})
}

func getGiftDispatchHistory(c *gin.Context) {
	name := c.Param("name")

	var gift models.Gift
	if err := db.Where("name = ?", name).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", name))
		return
	}

	var issues []models.GiftIssue
	if err := db.Where("gift = ?", name).Order("created_at DESC").Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	history := make([]gin.H, len(issues))
	for i, issue := range issues {
		history[i] = gin.H{
			"name":                  issue.Name,
			"date":                  fmtDate(issue.Date),
			"status":                issue.Status,
			"owner_full_name":       issue.OwnerFullName,
			"coordinator_full_name": issue.CoordinatorFullName,
			"emirates_id":           issue.EmiratesID,
			"mobile_number":         issue.MobileNumber,
			"address":               issue.Address,
			"person_photo":          fileStore.ResolveURL(issue.PersonPhoto),
			"delivery_note":         issue.DeliveryNote,
			"delivery_description":  issue.DeliveryDescription,
			"delivery_date":         fmtDate(issue.DeliveryDate),
			"creation":              fmtTime(issue.CreatedAt),
			"modified":              fmtTime(issue.UpdatedAt),
		}
	}

	c.JSON(http.StatusOK, gin.H{"dispatch_history": history, "total": len(history)})
}

// retryPendingRenders drains the render queue synchronously, re-attempting
// each due label render.
func retryPendingRenders(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}

	rendered := 0
	failed := 0
	for {
		job := renderQueue.Dequeue()
		if job == nil {
			break
		}

		var gift models.Gift
		if err := db.Where("name = ?", job.Gift).First(&gift).Error; err != nil {
			continue // gift cancelled since the job was queued
		}
		if tryRenderLabel(&gift) {
			rendered++
			continue
		}
		failed++
		if job.RetryCount+1 < job.MaxRetries {
			renderQueue.Enqueue(&renderqueue.RenderJob{
				Gift:         job.Gift,
				BarcodeValue: job.BarcodeValue,
				RetryAt:      time.Now().Add(time.Duration(job.RetryCount+1) * time.Minute),
				RetryCount:   job.RetryCount + 1,
				MaxRetries:   job.MaxRetries,
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"rendered": rendered,
		"failed":   failed,
		"pending":  renderQueue.Size(),
	})
}

// renderAndStoreLabel renders the gift's label and stores it, degrading
// gracefully: on failure the error is logged, the job is queued for retry and
// the gift stays persisted without a label.
func renderAndStoreLabel(gift *models.Gift) {
	if tryRenderLabel(gift) {
		return
	}
	renderQueue.Enqueue(&renderqueue.RenderJob{
		Gift:         gift.Name,
		BarcodeValue: gift.BarcodeValue,
		RetryAt:      time.Now(),
		MaxRetries:   5,
	})
}

func tryRenderLabel(gift *models.Gift) bool {
	data, err := barcode.RenderLabel(gift.BarcodeValue)
	if err != nil {
		log.Printf("Error generating barcode label for gift %s: %v", gift.Name, err)
		return false
	}
	ref, err := fileStore.Save(fmt.Sprintf("barcode_%s_%s.png", gift.Name, gift.BarcodeValue), data, false)
	if err != nil {
		log.Printf("Error storing barcode label for gift %s: %v", gift.Name, err)
		return false
	}
	gift.Barcode = ref
	if err := db.Model(&models.Gift{}).Where("name = ?", gift.Name).Update("barcode", ref).Error; err != nil {
		log.Printf("Error saving barcode reference for gift %s: %v", gift.Name, err)
		return false
	}
	return true
}

func giftJSON(g models.Gift, images []models.GiftImage, attributes []models.GiftAttribute) gin.H {
	imgs := make([]gin.H, len(images))
	for i, img := range images {
		imgs[i] = gin.H{"image": fileStore.ResolveURL(img.Image)}
	}
	attrs := make([]gin.H, len(attributes))
	for i, attr := range attributes {
		attrs[i] = gin.H{
			"attribute_name":  attr.AttributeName,
			"attribute_value": attr.AttributeValue,
		}
	}

	return gin.H{
		"name":                  g.Name,
		"gift_name":             g.GiftName,
		"gift_id":               g.GiftID,
		"description":           g.Description,
		"category":              g.Category,
		"gender":                g.Gender,
		"breed":                 g.Breed,
		"weight":                g.Weight,
		"farm_name":             g.FarmName,
		"status":                g.Status,
		"import_barcode":        g.ImportBarcode,
		"barcode":               fileStore.ResolveURL(g.Barcode),
		"barcode_value":         g.BarcodeValue,
		"gift_recipient":        g.GiftRecipient,
		"owner_full_name":       g.OwnerFullName,
		"coordinator_full_name": g.CoordinatorFullName,
		"emirates_id":           g.EmiratesID,
		"mobile_number":         g.MobileNumber,
		"issued_date":           fmtDate(g.IssuedDate),
		"person_photo":          fileStore.ResolveURL(g.PersonPhoto),
		"creation":              fmtTime(g.CreatedAt),
		"modified":              fmtTime(g.UpdatedAt),
		"additional_attributes": attrs,
		"images":                imgs,
	}
}
