package main

import (
	"net/http"
	"strings"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func getCategories(c *gin.Context) {
	var categories []models.GiftCategory
	if err := db.Order("category_name ASC").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(categories))
	for i, cat := range categories {
		var giftCount int64
		db.Model(&models.Gift{}).Where("category = ?", cat.CategoryName).Count(&giftCount)
		items[i] = gin.H{
			"name":          cat.Name,
			"category_name": cat.CategoryName,
			"description":   cat.Description,
			"gift_count":    giftCount,
			"created_by":    cat.CreatedBy,
			"modified_by":   cat.ModifiedBy,
			"creation":      fmtTime(cat.CreatedAt),
			"modified":      fmtTime(cat.UpdatedAt),
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func createCategory(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}

	var req struct {
		CategoryName string `json:"category_name" binding:"required"`
		Description  string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	categoryName := strings.TrimSpace(req.CategoryName)
	if categoryName == "" {
		respondError(c, apperrors.Validationf("category name cannot be empty"))
		return
	}

	var count int64
	db.Model(&models.GiftCategory{}).Where("category_name = ?", categoryName).Count(&count)
	if count > 0 {
		respondError(c, apperrors.Conflictf("Category %s already exists", categoryName))
		return
	}

	category := models.GiftCategory{
		Name:         uuid.New().String(),
		CategoryName: categoryName,
		Description:  req.Description,
		CreatedBy:    currentUsername(c),
	}
	if err := db.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"name":          category.Name,
		"category_name": category.CategoryName,
		"message":       "Category created successfully",
	})
}

func updateCategory(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var req struct {
		CategoryName *string `json:"category_name"`
		Description  *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var category models.GiftCategory
	if err := db.Where("name = ?", name).First(&category).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Category %s not found", name))
		return
	}

	if req.CategoryName != nil {
		newName := strings.TrimSpace(*req.CategoryName)
		if newName == "" {
			respondError(c, apperrors.Validationf("category name cannot be empty"))
			return
		}
		if newName != category.CategoryName {
			var count int64
			db.Model(&models.GiftCategory{}).
				Where("category_name = ? AND name != ?", newName, name).Count(&count)
			if count > 0 {
				respondError(c, apperrors.Conflictf("Category %s already exists", newName))
				return
			}
			// Rename follows through to the gifts carrying the old label.
			db.Model(&models.Gift{}).
				Where("category = ?", category.CategoryName).
				Update("category", newName)
			category.CategoryName = newName
		}
	}
	if req.Description != nil {
		category.Description = *req.Description
	}
	category.ModifiedBy = currentUsername(c)

	if err := db.Save(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": category.Name, "message": "Category updated successfully"})
}

func deleteCategory(c *gin.Context) {
	if !requireGiftModify(c) {
		return
	}
	name := c.Param("name")

	var category models.GiftCategory
	if err := db.Where("name = ?", name).First(&category).Error; err != nil {
		respondError(c, apperrors.NotFoundf("Category %s not found", name))
		return
	}

	var giftCount int64
	db.Model(&models.Gift{}).Where("category = ?", category.CategoryName).Count(&giftCount)
	if giftCount > 0 {
		respondError(c, apperrors.DependencyInUsef(
			"Cannot delete category %s: %d gift(s) are assigned to it",
			category.CategoryName, giftCount))
		return
	}

	if err := db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
