package main

import (
	"net/http"
	"strings"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/lifecycle"
	"gift-tracker/pkg/models"
	"gift-tracker/pkg/recipient"
	"gift-tracker/pkg/storage"

	"github.com/gin-gonic/gin"
)

func getRecipients(c *gin.Context) {
	page, limit, offset := pageParams(c, 20)

	query := db.Model(&models.GiftRecipient{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"owner_full_name LIKE ? OR coordinator_full_name LIKE ? OR coordinator_mobile_no LIKE ? OR coordinator_emirates_id LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	order := orderClause(c.Query("order_by"),
		[]string{"owner_full_name", "coordinator_full_name", "created_at", "updated_at"},
		"created_at", c.DefaultQuery("sort_order", "desc"))

	var recipients []models.GiftRecipient
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&recipients).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(recipients))
	for i, rec := range recipients {
		items[i] = recipientJSON(rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func getRecipient(c *gin.Context) {
	name := c.Param("name")

	var rec models.GiftRecipient
	if err := db.Where("name = ?", name).First(&rec).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Recipient %s not found", name))
		return
	}

	var issueCount, interestCount, giftCount int64
	db.Model(&models.GiftIssue{}).Where("gift_recipient = ?", rec.Name).Count(&issueCount)
	db.Model(&models.GiftInterest{}).Where("gift_recipient = ?", rec.Name).Count(&interestCount)
	db.Model(&models.Gift{}).
		Where("gift_recipient = ? AND status = ?", rec.Name, models.GiftIssued).
		Count(&giftCount)

	body := recipientJSON(rec)
	body["issue_count"] = issueCount
	body["interest_count"] = interestCount
	body["issued_gift_count"] = giftCount

	c.JSON(http.StatusOK, body)
}

// resolveRecipient runs the find-or-create deduplication directly and reports
// whether the person matched an existing record.
func resolveRecipient(c *gin.Context) {
	var req struct {
		OwnerFullName       string           `json:"owner_full_name" binding:"required"`
		CoordinatorFullName string           `json:"coordinator_full_name" binding:"required"`
		MobileNumber        string           `json:"mobile_number" binding:"required"`
		EmiratesID          string           `json:"emirates_id"`
		Address             string           `json:"address"`
		PersonPhoto         storage.ImageRef `json:"person_photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	photoRef, err := req.PersonPhoto.Resolve(fileStore, true)
	if err != nil {
		respondError(c, apperrors.Validationf("invalid person photo: %v", err))
		return
	}

	var before int64
	db.Model(&models.GiftRecipient{}).Count(&before)

	name, err := recipient.Resolve(db, recipient.Input{
		OwnerFullName:       req.OwnerFullName,
		CoordinatorFullName: req.CoordinatorFullName,
		MobileNumber:        req.MobileNumber,
		EmiratesID:          req.EmiratesID,
		Address:             req.Address,
		PersonPhoto:         photoRef,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	var after int64
	db.Model(&models.GiftRecipient{}).Count(&after)

	var rec models.GiftRecipient
	if err := db.Where("name = ?", name).First(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	body := recipientJSON(rec)
	body["created"] = after > before

	c.JSON(http.StatusOK, body)
}

// updateRecipient edits the canonical person record and propagates the new
// values to every issue, interest and issued-gift snapshot referencing it.
func updateRecipient(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		OwnerFullName       *string           `json:"owner_full_name"`
		CoordinatorFullName *string           `json:"coordinator_full_name"`
		MobileNumber        *string           `json:"mobile_number"`
		EmiratesID          *string           `json:"emirates_id"`
		Address             *string           `json:"address"`
		PersonPhoto         *storage.ImageRef `json:"person_photo"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var rec models.GiftRecipient
	if err := db.Where("name = ?", name).First(&rec).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Recipient %s not found", name))
		return
	}

	if req.OwnerFullName != nil {
		owner := recipient.TitleName(*req.OwnerFullName)
		if owner == "" {
			respondError(c, apperrors.Validationf("owner full name cannot be empty"))
			return
		}
		rec.OwnerFullName = owner
	}
	if req.CoordinatorFullName != nil {
		coordinator := recipient.TitleName(*req.CoordinatorFullName)
		if coordinator == "" {
			respondError(c, apperrors.Validationf("coordinator full name cannot be empty"))
			return
		}
		rec.CoordinatorFullName = coordinator
	}
	if req.MobileNumber != nil {
		mobile := recipient.NormalizeMobile(*req.MobileNumber)
		if err := recipient.ValidateMobile(mobile); err != nil {
			respondError(c, err)
			return
		}
		rec.CoordinatorMobileNo = mobile
	}
	if req.EmiratesID != nil {
		formatted, err := recipient.ValidateEmiratesID(*req.EmiratesID)
		if err != nil {
			respondError(c, err)
			return
		}
		rec.CoordinatorEmiratesID = formatted
	}
	if req.Address != nil {
		rec.Address = strings.TrimSpace(*req.Address)
	}
	if req.PersonPhoto != nil && !req.PersonPhoto.IsZero() {
		ref, err := req.PersonPhoto.Resolve(fileStore, true)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid person photo: %v", err))
			return
		}
		rec.PersonPhoto = ref
	}

	if err := db.Save(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := lifecycle.PropagateRecipient(db, rec.Name); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": rec.Name, "message": "Gift recipient updated successfully"})
}

func deleteRecipient(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var rec models.GiftRecipient
	if err := db.Where("name = ?", name).First(&rec).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Recipient %s not found", name))
		return
	}

	var issueCount, interestCount int64
	db.Model(&models.GiftIssue{}).Where("gift_recipient = ?", rec.Name).Count(&issueCount)
	db.Model(&models.GiftInterest{}).Where("gift_recipient = ?", rec.Name).Count(&interestCount)
	if issueCount > 0 || interestCount > 0 {
		respondError(c, apperrors.DependencyInUsef(
			"Cannot delete recipient: referenced by %d gift issue(s) and %d gift interest(s)",
			issueCount, interestCount))
		return
	}

	if err := db.Delete(&rec).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Gift recipient deleted successfully"})
}

func recipientJSON(rec models.GiftRecipient) gin.H {
	return gin.H{
		"name":                    rec.Name,
		"owner_full_name":         rec.OwnerFullName,
		"coordinator_full_name":   rec.CoordinatorFullName,
		"coordinator_mobile_no":   rec.CoordinatorMobileNo,
		"coordinator_emirates_id": rec.CoordinatorEmiratesID,
		"address":                 rec.Address,
		"person_photo":            fileStore.ResolveURL(rec.PersonPhoto),
		"creation":                fmtTime(rec.CreatedAt),
		"modified":                fmtTime(rec.UpdatedAt),
	}
}
