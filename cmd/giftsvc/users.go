package main

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/identity"
	"gift-tracker/pkg/models"

	"github.com/gin-gonic/gin"
)

func hashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func getUsers(c *gin.Context) {
	if !requireUserAdmin(c) {
		return
	}

	var users []models.User
	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(users))
	for i, u := range users {
		items[i] = userJSON(u)
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func createUser(c *gin.Context) {
	if !requireUserAdmin(c) {
		return
	}

	var req struct {
		Username  string `json:"username" binding:"required"`
		FullName  string `json:"full_name" binding:"required"`
		Email     string `json:"email"`
		Phone     string `json:"phone"`
		Role      string `json:"role"`
		Password  string `json:"password" binding:"required"`
		BirthDate string `json:"birth_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	username := strings.TrimSpace(req.Username)
	var count int64
	db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		respondError(c, apperrors.Conflictf("User %s already exists", username))
		return
	}

	role := identity.RoleEventCoordinator
	if req.Role != "" {
		parsed, err := identity.ParseRole(req.Role)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid role: %s", req.Role))
			return
		}
		role = parsed
	}

	user := models.User{
		Username:     username,
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		BirthDate:    parseDate(req.BirthDate),
		Role:         string(role),
		PasswordHash: hashPassword(req.Password),
	}
	if err := db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username, "message": "User created successfully"})
}

func updateUser(c *gin.Context) {
	if !requireUserAdmin(c) {
		return
	}
	username := c.Param("name")

	var req struct {
		FullName  *string `json:"full_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Bio       *string `json:"bio"`
		Role      *string `json:"role"`
		BirthDate *string `json:"birth_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, apperrors.NotFoundf("User %s not found", username))
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.BirthDate != nil {
		user.BirthDate = parseDate(*req.BirthDate)
	}
	if req.Role != nil {
		role, err := identity.ParseRole(*req.Role)
		if err != nil {
			respondError(c, apperrors.Validationf("invalid role: %s", *req.Role))
			return
		}
		user.Role = string(role)
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username, "message": "User updated successfully"})
}

func updateUserPassword(c *gin.Context) {
	username := c.Param("name")

	// Admin can reset anyone's password; everyone else only their own.
	p, ok := currentPrincipal(c)
	if !ok || (!p.CanManageUsers() && p.Username != username) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access Denied: cannot change another user's password"})
		return
	}

	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if len(req.Password) < 6 {
		respondError(c, apperrors.Validationf("password must be at least 6 characters"))
		return
	}

	res := db.Model(&models.User{}).
		Where("username = ?", username).
		Update("password_hash", hashPassword(req.Password))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, apperrors.NotFoundf("User %s not found", username))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func deleteUser(c *gin.Context) {
	if !requireUserAdmin(c) {
		return
	}
	username := c.Param("name")

	if username == currentUsername(c) {
		respondError(c, apperrors.Validationf("cannot delete your own account"))
		return
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, apperrors.NotFoundf("User %s not found", username))
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

func getAvailableRoles(c *gin.Context) {
	roles := identity.AllRoles()
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	c.JSON(http.StatusOK, gin.H{"roles": names})
}

func getUserProfile(c *gin.Context) {
	username := currentUsername(c)

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, apperrors.NotFoundf("User %s not found", username))
		return
	}

	body := userJSON(user)
	if p, ok := currentPrincipal(c); ok {
		body["can_modify_gifts"] = p.CanModifyGifts()
		body["can_manage_users"] = p.CanManageUsers()
	}

	c.JSON(http.StatusOK, body)
}

func updateUserProfile(c *gin.Context) {
	username := currentUsername(c)

	var req struct {
		FullName  *string `json:"full_name"`
		Email     *string `json:"email"`
		Phone     *string `json:"phone"`
		Bio       *string `json:"bio"`
		BirthDate *string `json:"birth_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var user models.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		respondError(c, apperrors.NotFoundf("User %s not found", username))
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.BirthDate != nil {
		user.BirthDate = parseDate(*req.BirthDate)
	}

	if err := db.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, userJSON(user))
}

func getDashboardStats(c *gin.Context) {
	var totalGifts, availableGifts, issuedGifts int64
	db.Model(&models.Gift{}).Count(&totalGifts)
	db.Model(&models.Gift{}).Where("status = ?", models.GiftAvailable).Count(&availableGifts)
	db.Model(&models.Gift{}).Where("status = ?", models.GiftIssued).Count(&issuedGifts)

	var pendingDelivery, delivered int64
	db.Model(&models.GiftIssue{}).Where("status = ?", models.DeliveryDispatched).Count(&pendingDelivery)
	db.Model(&models.GiftIssue{}).Where("status = ?", models.DeliveryDelivered).Count(&delivered)

	var interests, recipients, categories int64
	db.Model(&models.GiftInterest{}).Count(&interests)
	db.Model(&models.GiftRecipient{}).Count(&recipients)
	db.Model(&models.GiftCategory{}).Count(&categories)

	var recentIssues []models.GiftIssue
	db.Order("created_at DESC").Limit(5).Find(&recentIssues)
	recent := make([]gin.H, len(recentIssues))
	for i, issue := range recentIssues {
		recent[i] = gin.H{
			"name":            issue.Name,
			"gift":            issue.Gift,
			"owner_full_name": issue.OwnerFullName,
			"status":          issue.Status,
			"date":            fmtDate(issue.Date),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"recent_issues":    recent,
		"total_gifts":      totalGifts,
		"available_gifts":  availableGifts,
		"issued_gifts":     issuedGifts,
		"pending_delivery": pendingDelivery,
		"delivered":        delivered,
		"total_interests":  interests,
		"total_recipients": recipients,
		"total_categories": categories,
	})
}

// getUserStats breaks down issue and interest activity per creating user.
func getUserStats(c *gin.Context) {
	var users []models.User
	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]gin.H, len(users))
	for i, u := range users {
		var issueCount, interestCount int64
		db.Model(&models.GiftIssue{}).Where("created_by = ?", u.Username).Count(&issueCount)
		db.Model(&models.GiftInterest{}).Where("created_by = ?", u.Username).Count(&interestCount)
		items[i] = gin.H{
			"username":       u.Username,
			"full_name":      u.FullName,
			"role":           u.Role,
			"issue_count":    issueCount,
			"interest_count": interestCount,
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "total": len(items)})
}

func userJSON(u models.User) gin.H {
	return gin.H{
		"username":   u.Username,
		"full_name":  u.FullName,
		"email":      u.Email,
		"phone":      u.Phone,
		"bio":        u.Bio,
		"birth_date": fmtDate(u.BirthDate),
		"role":       u.Role,
		"creation":   fmtTime(u.CreatedAt),
		"modified":   fmtTime(u.UpdatedAt),
	}
}
