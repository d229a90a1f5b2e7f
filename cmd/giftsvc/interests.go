package main

import (
	"net/http"
	"strings"
	"time"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"
	"gift-tracker/pkg/recipient"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func getGiftInterests(c *gin.Context) {
	page, limit, offset := pageParams(c, 20)

	query := db.Model(&models.GiftInterest{})
	if giftName := c.Query("gift"); giftName != "" {
		query = query.Where("gift = ?", giftName)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"owner_full_name LIKE ? OR coordinator_full_name LIKE ? OR mobile_number LIKE ?",
			like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	order := orderClause(c.Query("order_by"),
		[]string{"date", "owner_full_name", "created_at", "updated_at"},
		"created_at", c.DefaultQuery("sort_order", "desc"))

	var interests []models.GiftInterest
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&interests).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(interests))
	for i, interest := range interests {
		items[i] = interestJSON(interest)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func getGiftInterest(c *gin.Context) {
	name := c.Param("name")

	var interest models.GiftInterest
	if err := db.Where("name = ?", name).First(&interest).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Interest %s not found", name))
		return
	}

	c.JSON(http.StatusOK, interestJSON(interest))
}

// createGiftInterest records that a person showed interest in a gift. The
// gift's Available/Issued state is untouched; the person goes through the
// same deduplicating resolver as issuance.
func createGiftInterest(c *gin.Context) {
	var req struct {
		Gift                string `json:"gift" binding:"required"`
		GiftRecipient       string `json:"gift_recipient"`
		OwnerFullName       string `json:"owner_full_name"`
		CoordinatorFullName string `json:"coordinator_full_name"`
		MobileNumber        string `json:"mobile_number"`
		EmiratesID          string `json:"emirates_id"`
		Address             string `json:"address"`
		Date                string `json:"date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var gift models.Gift
	if err := db.Where("name = ?", req.Gift).First(&gift).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift %s not found", req.Gift))
		return
	}

	var rec models.GiftRecipient
	if strings.TrimSpace(req.GiftRecipient) != "" {
		if err := db.Where("name = ?", req.GiftRecipient).First(&rec).Error; err != nil {
			respondError(c, apperrors.NotFoundf("Gift Recipient %s not found", req.GiftRecipient))
			return
		}
	} else {
		recName, err := recipient.Resolve(db, recipient.Input{
			OwnerFullName:       req.OwnerFullName,
			CoordinatorFullName: req.CoordinatorFullName,
			MobileNumber:        req.MobileNumber,
			EmiratesID:          req.EmiratesID,
			Address:             req.Address,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if err := db.Where("name = ?", recName).First(&rec).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	var existing int64
	db.Model(&models.GiftInterest{}).
		Where("gift = ? AND owner_full_name = ? AND mobile_number = ?",
			gift.Name, rec.OwnerFullName, rec.CoordinatorMobileNo).
		Count(&existing)
	if existing > 0 {
		respondError(c, apperrors.Conflictf(
			"Interest already exists from %s for this gift", rec.OwnerFullName))
		return
	}

	date := parseDate(req.Date)
	if date == nil {
		now := time.Now()
		date = &now
	}

	interest := models.GiftInterest{
		Name:                uuid.New().String(),
		Gift:                gift.Name,
		GiftRecipient:       rec.Name,
		OwnerFullName:       rec.OwnerFullName,
		CoordinatorFullName: rec.CoordinatorFullName,
		MobileNumber:        rec.CoordinatorMobileNo,
		EmiratesID:          rec.CoordinatorEmiratesID,
		Address:             rec.Address,
		Date:                date,
		CreatedBy:           currentUsername(c),
	}
	if err := db.Create(&interest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           interest.Name,
		"gift":           interest.Gift,
		"gift_recipient": interest.GiftRecipient,
		"message":        "Gift interest recorded successfully",
	})
}

func updateGiftInterest(c *gin.Context) {
	name := c.Param("name")

	var req struct {
		Date    *string `json:"date"`
		Address *string `json:"address"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var interest models.GiftInterest
	if err := db.Where("name = ?", name).First(&interest).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Interest %s not found", name))
		return
	}

	if req.Date != nil {
		interest.Date = parseDate(*req.Date)
	}
	if req.Address != nil {
		interest.Address = *req.Address
	}

	if err := db.Save(&interest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": interest.Name, "message": "Gift interest updated successfully"})
}

func deleteGiftInterest(c *gin.Context) {
	name := c.Param("name")

	var interest models.GiftInterest
	if err := db.Where("name = ?", name).First(&interest).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Interest %s not found", name))
		return
	}

	if err := db.Delete(&interest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gift interest deleted successfully"})
}

func interestJSON(interest models.GiftInterest) gin.H {
	var gift models.Gift
	giftName := ""
	giftStatus := ""
	if err := db.Where("name = ?", interest.Gift).First(&gift).Error; err == nil {
		giftName = gift.GiftName
		giftStatus = gift.Status
	}

	return gin.H{
		"name":                  interest.Name,
		"gift":                  interest.Gift,
		"gift_name":             giftName,
		"gift_status":           giftStatus,
		"gift_recipient":        interest.GiftRecipient,
		"owner_full_name":       interest.OwnerFullName,
		"coordinator_full_name": interest.CoordinatorFullName,
		"mobile_number":         interest.MobileNumber,
		"emirates_id":           interest.EmiratesID,
		"address":               interest.Address,
		"date":                  fmtDate(interest.Date),
		"created_by":            interest.CreatedBy,
		"creation":              fmtTime(interest.CreatedAt),
		"modified":              fmtTime(interest.UpdatedAt),
	}
}
