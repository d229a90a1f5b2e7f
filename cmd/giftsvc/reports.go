package main

import (
	"net/http"
	"time"

	"gift-tracker/pkg/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// dateRange applies an inclusive from/to filter on the given column.
func dateRange(c *gin.Context, query *gorm.DB, column string) *gorm.DB {
	if from := parseDate(c.Query("from_date")); from != nil {
		query = query.Where(column+" >= ?", from)
	}
	if to := parseDate(c.Query("to_date")); to != nil {
		query = query.Where(column+" < ?", to.AddDate(0, 0, 1))
	}
	return query
}

// getInterestShowsReport lists every recorded interest with the gift it was
// shown in, within an optional date range.
func getInterestShowsReport(c *gin.Context) {
	query := db.Model(&models.GiftInterest{}).
		Select(`gift_interests.name, gift_interests.gift, gifts.gift_name, gifts.category,
			gifts.status AS gift_status, gifts.barcode_value,
			gift_interests.owner_full_name, gift_interests.coordinator_full_name,
			gift_interests.mobile_number, gift_interests.emirates_id,
			gift_interests.date, gift_interests.created_by`).
		Joins("LEFT JOIN gifts ON gifts.name = gift_interests.gift AND gifts.deleted_at IS NULL")
	query = dateRange(c, query, "gift_interests.date")
	if category := c.Query("category"); category != "" {
		query = query.Where("gifts.category = ?", category)
	}

	var rows []struct {
		Name                string
		Gift                string
		GiftName            string
		Category            string
		GiftStatus          string
		BarcodeValue        string
		OwnerFullName       string
		CoordinatorFullName string
		MobileNumber        string
		EmiratesID          string
		Date                *time.Time
		CreatedBy           string
	}
	if err := query.Order("gift_interests.date DESC").Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(rows))
	for i, r := range rows {
		items[i] = gin.H{
			"name":                  r.Name,
			"gift":                  r.Gift,
			"gift_name":             r.GiftName,
			"category":              r.Category,
			"gift_status":           r.GiftStatus,
			"barcode_value":         r.BarcodeValue,
			"owner_full_name":       r.OwnerFullName,
			"coordinator_full_name": r.CoordinatorFullName,
			"mobile_number":         r.MobileNumber,
			"emirates_id":           r.EmiratesID,
			"date":                  fmtDate(r.Date),
			"created_by":            r.CreatedBy,
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

// getDispatchedGiftsReport lists every issuance with its delivery sub-status,
// within an optional date range.
func getDispatchedGiftsReport(c *gin.Context) {
	query := db.Model(&models.GiftIssue{})
	query = dateRange(c, query, "date")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var issues []models.GiftIssue
	if err := query.Order("date DESC").Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(issues))
	for i, issue := range issues {
		items[i] = issueJSON(issue, nil)
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

// getPendingDeliveryReport lists issues still in the Dispatched sub-status.
func getPendingDeliveryReport(c *gin.Context) {
	query := db.Model(&models.GiftIssue{}).Where("status = ?", models.DeliveryDispatched)
	query = dateRange(c, query, "date")

	var issues []models.GiftIssue
	if err := query.Order("date ASC").Find(&issues).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(issues))
	for i, issue := range issues {
		items[i] = issueJSON(issue, nil)
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

// getBarcodePrintReport returns gifts with their rendered label URLs so the
// client can batch-print them.
func getBarcodePrintReport(c *gin.Context) {
	query := db.Model(&models.Gift{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var gifts []models.Gift
	if err := query.Order("gift_name ASC").Find(&gifts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, 0, len(gifts))
	missing := 0
	for _, g := range gifts {
		if g.Barcode == "" {
			missing++
			continue
		}
		items = append(items, gin.H{
			"name":          g.Name,
			"gift_name":     g.GiftName,
			"gift_id":       g.GiftID,
			"category":      g.Category,
			"status":        g.Status,
			"barcode_value": g.BarcodeValue,
			"barcode":       fileStore.ResolveURL(g.Barcode),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data":           items,
		"total":          len(items),
		"missing_labels": missing,
	})
}
