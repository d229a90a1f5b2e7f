// Package lifecycle implements the gift state machine: the Available/Issued
// transitions driven by gift issue records, the denormalized recipient
// snapshot kept on the gift row, and the projection update that re-applies a
// recipient's canonical fields to every linked record.
package lifecycle

import (
	"errors"
	"time"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IssueGift creates the issue record and transitions the gift to Issued in
// one transaction. The status check is a compare-and-set on the gift row, so
// the loser of two concurrent issuances gets a conflict instead of silently
// overwriting the winner's snapshot.
func IssueGift(db *gorm.DB, giftName string, issue *models.GiftIssue, documents []models.IssueDocument) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var gift models.Gift
		if err := tx.Where("name = ?", giftName).First(&gift).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("Gift %s not found", giftName)
			}
			return err
		}
		if gift.Status == models.GiftIssued {
			return apperrors.Conflictf("Gift %s has already been issued and cannot be issued again", giftName)
		}

		if issue.Name == "" {
			issue.Name = uuid.New().String()
		}
		issue.Gift = giftName
		if issue.Status == "" {
			issue.Status = models.DeliveryDispatched
		}
		if issue.Date == nil {
			now := time.Now()
			issue.Date = &now
		}
		if err := tx.Create(issue).Error; err != nil {
			return err
		}
		for i := range documents {
			documents[i].IssueID = issue.ID
			if err := tx.Create(&documents[i]).Error; err != nil {
				return err
			}
		}

		res := tx.Model(&models.Gift{}).
			Where("name = ? AND status = ?", giftName, models.GiftAvailable).
			Updates(map[string]interface{}{
				"status":                models.GiftIssued,
				"gift_recipient":        issue.GiftRecipient,
				"owner_full_name":       issue.OwnerFullName,
				"coordinator_full_name": issue.CoordinatorFullName,
				"mobile_number":         issue.MobileNumber,
				"emirates_id":           issue.EmiratesID,
				"address":               issue.Address,
				"person_photo":          issue.PersonPhoto,
				"issued_date":           issue.Date,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent issuance.
			return apperrors.Conflictf("Gift %s has already been issued by someone else", giftName)
		}
		return nil
	})
}

// RevertIssue deletes the issue record and returns its gift to Available with
// every snapshot field cleared. This is the sole rollback path; it succeeds
// whenever the issue record exists, regardless of later gift edits.
func RevertIssue(db *gorm.DB, issueName string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var issue models.GiftIssue
		if err := tx.Where("name = ?", issueName).First(&issue).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("Gift Issue %s not found", issueName)
			}
			return err
		}

		if err := tx.Where("issue_id = ?", issue.ID).Delete(&models.IssueDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&issue).Error; err != nil {
			return err
		}

		return tx.Model(&models.Gift{}).
			Where("name = ?", issue.Gift).
			Updates(map[string]interface{}{
				"status":                models.GiftAvailable,
				"gift_recipient":        "",
				"owner_full_name":       "",
				"coordinator_full_name": "",
				"mobile_number":         "",
				"emirates_id":           "",
				"address":               "",
				"person_photo":          "",
				"issued_date":           nil,
			}).Error
	})
}

// UpdateDeliveryStatus changes the Dispatched/Delivered sub-status of an
// issue. It never touches the gift's Available/Issued state. Transitioning to
// Delivered stamps the delivery date, defaulting to now.
func UpdateDeliveryStatus(db *gorm.DB, issueName, status, note, description string, date *time.Time) (*models.GiftIssue, error) {
	if status != models.DeliveryDispatched && status != models.DeliveryDelivered {
		return nil, apperrors.Validationf("invalid status, must be 'Dispatched' or 'Delivered'")
	}

	var issue models.GiftIssue
	if err := db.Where("name = ?", issueName).First(&issue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundf("Gift Issue %s not found", issueName)
		}
		return nil, err
	}

	issue.Status = status
	if status == models.DeliveryDelivered {
		if note != "" {
			issue.DeliveryNote = note
		}
		if description != "" {
			issue.DeliveryDescription = description
		}
		if date != nil {
			issue.DeliveryDate = date
		} else {
			now := time.Now()
			issue.DeliveryDate = &now
		}
	}
	if err := db.Save(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// PropagateRecipient re-applies the canonical recipient fields to every live
// record that references it, in a fixed order: issues, then interests, then
// the snapshot of gifts currently issued to the recipient. The update is
// idempotent and runs in one transaction.
func PropagateRecipient(db *gorm.DB, recipientName string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var rec models.GiftRecipient
		if err := tx.Where("name = ?", recipientName).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFoundf("Gift Recipient %s not found", recipientName)
			}
			return err
		}

		personFields := map[string]interface{}{
			"owner_full_name":       rec.OwnerFullName,
			"coordinator_full_name": rec.CoordinatorFullName,
			"mobile_number":         rec.CoordinatorMobileNo,
			"emirates_id":           rec.CoordinatorEmiratesID,
			"address":               rec.Address,
		}

		issueFields := map[string]interface{}{"person_photo": rec.PersonPhoto}
		for k, v := range personFields {
			issueFields[k] = v
		}
		if err := tx.Model(&models.GiftIssue{}).
			Where("gift_recipient = ?", recipientName).
			Updates(issueFields).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.GiftInterest{}).
			Where("gift_recipient = ?", recipientName).
			Updates(personFields).Error; err != nil {
			return err
		}

		giftFields := map[string]interface{}{"person_photo": rec.PersonPhoto}
		for k, v := range personFields {
			giftFields[k] = v
		}
		return tx.Model(&models.Gift{}).
			Where("gift_recipient = ? AND status = ?", recipientName, models.GiftIssued).
			Updates(giftFields).Error
	})
}
