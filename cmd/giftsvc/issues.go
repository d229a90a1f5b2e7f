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

type documentRequest struct {
	DocumentType       string           `json:"document_type"`
	DocumentAttachment storage.ImageRef `json:"document_attachment"`
	Description        string           `json:"description"`
}

type issueRequest struct {
	Gift                string            `json:"gift"`
	GiftRecipient       string            `json:"gift_recipient"`
	OwnerFullName       string            `json:"owner_full_name"`
	CoordinatorFullName string            `json:"coordinator_full_name"`
	MobileNumber        string            `json:"mobile_number"`
	EmiratesID          string            `json:"emirates_id"`
	Address             string            `json:"address"`
	PersonPhoto         storage.ImageRef  `json:"person_photo"`
	Date                string            `json:"date"`
	Documents           []documentRequest `json:"documents"`
}

// resolveIssueRecipient returns the canonical recipient for an issue request:
// an explicit gift_recipient reference is looked up as-is, otherwise the
// person fields go through the deduplicating resolver.
func resolveIssueRecipient(req issueRequest, photoRef string) (*models.GiftRecipient, error) {
	if strings.TrimSpace(req.GiftRecipient) != "" {
		var rec models.GiftRecipient
		if err := db.Where("name = ?", req.GiftRecipient).First(&rec).Error; err != nil {
			return nil, apperrors.NotFoundf("Gift Recipient %s not found", req.GiftRecipient)
		}
		return &rec, nil
	}

	name, err := recipient.Resolve(db, recipient.Input{
		OwnerFullName:       req.OwnerFullName,
		CoordinatorFullName: req.CoordinatorFullName,
		MobileNumber:        req.MobileNumber,
		EmiratesID:          req.EmiratesID,
		Address:             req.Address,
		PersonPhoto:         photoRef,
	})
	if err != nil {
		return nil, err
	}
	var rec models.GiftRecipient
	if err := db.Where("name = ?", name).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// performIssue is the shared core behind POST /gift-issues and
// POST /gifts/:name/issue.
func performIssue(c *gin.Context, giftName string, req issueRequest) {
	photoRef, err := req.PersonPhoto.Resolve(fileStore, true)
	if err != nil {
		respondError(c, apperrors.Validationf("invalid person photo: %v", err))
		return
	}

	rec, err := resolveIssueRecipient(req, photoRef)
	if err != nil {
		respondError(c, err)
		return
	}
	if photoRef == "" {
		photoRef = rec.PersonPhoto
	}

	documents := make([]models.IssueDocument, 0, len(req.Documents))
	for _, d := range req.Documents {
		if d.DocumentType == "" || d.DocumentAttachment.IsZero() {
			continue
		}
		ref, err := d.DocumentAttachment.Resolve(fileStore, true)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid document attachment: %v", err))
			return
		}
		documents = append(documents, models.IssueDocument{
			DocumentType:       d.DocumentType,
			DocumentAttachment: ref,
			Description:        d.Description,
		})
	}

	issue := models.GiftIssue{
		GiftRecipient:       rec.Name,
		OwnerFullName:       rec.OwnerFullName,
		CoordinatorFullName: rec.CoordinatorFullName,
		MobileNumber:        rec.CoordinatorMobileNo,
		EmiratesID:          rec.CoordinatorEmiratesID,
		Address:             rec.Address,
		PersonPhoto:         photoRef,
		Date:                parseDate(req.Date),
		CreatedBy:           currentUsername(c),
	}

	if err := lifecycle.IssueGift(db, giftName, &issue, documents); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":           issue.Name,
		"gift":           issue.Gift,
		"gift_recipient": issue.GiftRecipient,
		"status":         issue.Status,
		"date":           fmtDate(issue.Date),
		"message":        "Gift issued successfully",
	})
}

func createGiftIssue(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Gift) == "" {
		respondError(c, apperrors.Validationf("gift is required"))
		return
	}
	performIssue(c, req.Gift, req)
}

func issueGiftDirect(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	var req issueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	performIssue(c, c.Param("name"), req)
}

func getGiftIssues(c *gin.Context) {
	page, limit, offset := pageParams(c, 20)

	query := db.Model(&models.GiftIssue{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
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
		[]string{"date", "status", "owner_full_name", "created_at", "updated_at"},
		"created_at", c.DefaultQuery("sort_order", "desc"))

	var issues []models.GiftIssue
	if err := query.Order(order).Limit(limit).Offset(offset).Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(issues))
	for i, issue := range issues {
		items[i] = issueJSON(issue, nil)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        items,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages(total, limit),
	})
}

func getGiftIssue(c *gin.Context) {
	name := c.Param("name")

	var issue models.GiftIssue
	if err := db.Where("name = ?", name).First(&issue).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Issue %s not found", name))
		return
	}

	var documents []models.IssueDocument
	db.Where("issue_id = ?", issue.ID).Find(&documents)

	c.JSON(http.StatusOK, issueJSON(issue, documents))
}

func updateGiftIssue(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		Date        *string            `json:"date"`
		Address     *string            `json:"address"`
		PersonPhoto *storage.ImageRef  `json:"person_photo"`
		Documents   *[]documentRequest `json:"documents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var issue models.GiftIssue
	if err := db.Where("name = ?", name).First(&issue).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Gift Issue %s not found", name))
		return
	}

	if req.Date != nil {
		issue.Date = parseDate(*req.Date)
	}
	if req.Address != nil {
		issue.Address = *req.Address
	}
	if req.PersonPhoto != nil && !req.PersonPhoto.IsZero() {
		ref, err := req.PersonPhoto.Resolve(fileStore, true)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid person photo: %v", err))
			return
		}
		issue.PersonPhoto = ref
	}

	if err := db.Save(&issue).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Documents != nil {
		db.Where("issue_id = ?", issue.ID).Delete(&models.IssueDocument{})
		for _, d := range *req.Documents {
			if d.DocumentType == "" || d.DocumentAttachment.IsZero() {
				continue
			}
			ref, err := d.DocumentAttachment.Resolve(fileStore, true)
			if err != nil {
				respondError(c, apperrors.Validationf("invalid document attachment: %v", err))
				return
			}
			db.Create(&models.IssueDocument{
				IssueID:            issue.ID,
				DocumentType:       d.DocumentType,
				DocumentAttachment: ref,
				Description:        d.Description,
			})
		}
	}

	// Keep the gift snapshot in sync when this is the active issue.
	if issue.Status != "" {
		db.Model(&models.Gift{}).
			Where("name = ? AND status = ?", issue.Gift, models.GiftIssued).
			Updates(map[string]interface{}{
				"address":      issue.Address,
				"person_photo": issue.PersonPhoto,
				"issued_date":  issue.Date,
			})
	}

	c.JSON(http.StatusOK, gin.H{"name": issue.Name, "message": "Gift issue updated successfully"})
}

// deleteGiftIssue reverts the issuance: the issue record and its documents go
// away and the gift returns to Available.
func deleteGiftIssue(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	if err := lifecycle.RevertIssue(db, c.Param("name")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Gift issue deleted and gift returned to Available"})
}

func updateGiftDeliveryStatus(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		Status              string `json:"status" binding:"required"`
		DeliveryNote        string `json:"delivery_note"`
		DeliveryDescription string `json:"delivery_description"`
		DeliveryDate        string `json:"delivery_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	issue, err := lifecycle.UpdateDeliveryStatus(db, name, req.Status,
		req.DeliveryNote, req.DeliveryDescription, parseDate(req.DeliveryDate))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":          issue.Name,
		"status":        issue.Status,
		"delivery_date": fmtDate(issue.DeliveryDate),
		"message":       "Delivery status updated successfully",
	})
}

func issueJSON(issue models.GiftIssue, documents []models.IssueDocument) gin.H {
	docs := make([]gin.H, len(documents))
	for i, d := range documents {
		docs[i] = gin.H{
			"document_type":       d.DocumentType,
			"document_attachment": fileStore.ResolveURL(d.DocumentAttachment),
			"description":         d.Description,
		}
	}

	var gift models.Gift
	giftName := ""
	barcodeValue := ""
	if err := db.Where("name = ?", issue.Gift).First(&gift).Error; err == nil {
		giftName = gift.GiftName
		barcodeValue = gift.BarcodeValue
	}

	return gin.H{
		"name":                  issue.Name,
		"gift":                  issue.Gift,
		"gift_name":             giftName,
		"barcode_value":         barcodeValue,
		"gift_recipient":        issue.GiftRecipient,
		"owner_full_name":       issue.OwnerFullName,
		"coordinator_full_name": issue.CoordinatorFullName,
		"mobile_number":         issue.MobileNumber,
		"emirates_id":           issue.EmiratesID,
		"address":               issue.Address,
		"person_photo":          fileStore.ResolveURL(issue.PersonPhoto),
		"date":                  fmtDate(issue.Date),
		"status":                issue.Status,
		"delivery_note":         issue.DeliveryNote,
		"delivery_description":  issue.DeliveryDescription,
		"delivery_date":         fmtDate(issue.DeliveryDate),
		"created_by":            issue.CreatedBy,
		"creation":              fmtTime(issue.CreatedAt),
		"modified":              fmtTime(issue.UpdatedAt),
		"documents":             docs,
	}
}
