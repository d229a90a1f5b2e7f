package main

import (
	"net/http"
	"strings"

	"gift-tracker/internal/middleware"
	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/identity"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error()})
}

// requireGiftModify enforces the Admin / Event Manager gate on gift-changing
// endpoints. Returns false after writing the response when access is denied.
func requireGiftModify(c *gin.Context) bool {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok || !p.CanModifyGifts() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access Denied: only Admin and Event Manager roles can create or modify gifts",
		})
		return false
	}
	return true
}

func requireUserAdmin(c *gin.Context) bool {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok || !p.CanManageUsers() {
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access Denied: only Admin can manage users",
		})
		return false
	}
	return true
}

func currentUsername(c *gin.Context) string {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return ""
	}
	return p.Username
}

func currentPrincipal(c *gin.Context) (identity.Principal, bool) {
	return middleware.CurrentPrincipal(c)
}

// orderClause validates a requested sort column against a whitelist and
// returns a safe ORDER BY fragment.
func orderClause(orderBy string, valid []string, fallback, sortOrder string) string {
	ok := false
	for _, col := range valid {
		if orderBy == col {
			ok = true
			break
		}
	}
	if !ok {
		orderBy = fallback
	}
	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	return orderBy + " " + direction
}
