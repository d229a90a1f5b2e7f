package lifecycle

import (
	"testing"
	"time"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database")
	}
	db.AutoMigrate(&models.Gift{}, &models.GiftIssue{}, &models.IssueDocument{},
		&models.GiftInterest{}, &models.GiftRecipient{})
	return db
}

func TestIssueGift(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001"})

	issue := models.GiftIssue{
		GiftRecipient:       "r1",
		OwnerFullName:       "Mohammed Al Nahyan",
		CoordinatorFullName: "Ahmed Hassan",
		MobileNumber:        "971501234567",
	}
	err := IssueGift(db, "g1", &issue, []models.IssueDocument{
		{DocumentType: "Handover Form", DocumentAttachment: "/private/files/form.pdf"},
	})
	assert.NoError(t, err)
	assert.NotEmpty(t, issue.Name)
	assert.Equal(t, models.DeliveryDispatched, issue.Status)
	assert.NotNil(t, issue.Date)

	var gift models.Gift
	db.Where("name = ?", "g1").First(&gift)
	assert.Equal(t, models.GiftIssued, gift.Status)
	assert.Equal(t, "r1", gift.GiftRecipient)
	assert.Equal(t, "Mohammed Al Nahyan", gift.OwnerFullName)
	assert.NotNil(t, gift.IssuedDate)

	var docCount int64
	db.Model(&models.IssueDocument{}).Where("issue_id = ?", issue.ID).Count(&docCount)
	assert.Equal(t, int64(1), docCount)
}

func TestIssueGiftNotFound(t *testing.T) {
	db := setupTestDB()

	issue := models.GiftIssue{
		OwnerFullName: "Mohammed Al Nahyan", CoordinatorFullName: "Ahmed Hassan",
		MobileNumber: "971501234567",
	}
	err := IssueGift(db, "nope", &issue, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))
}

func TestIssueGiftAlreadyIssued(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftIssued, BarcodeValue: "00000001"})

	issue := models.GiftIssue{
		OwnerFullName: "Someone Else", CoordinatorFullName: "Another Person",
		MobileNumber: "971501234567",
	}
	err := IssueGift(db, "g1", &issue, nil)
	assert.True(t, apperrors.IsKind(err, apperrors.Conflict))

	// Nothing committed.
	var count int64
	db.Model(&models.GiftIssue{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestRevertIssueRoundTrip(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.Gift{Name: "g1", GiftName: "Falcon", Status: models.GiftAvailable, BarcodeValue: "00000001"})

	issue := models.GiftIssue{
		GiftRecipient:       "r1",
		OwnerFullName:       "Mohammed Al Nahyan",
		CoordinatorFullName: "Ahmed Hassan",
		MobileNumber:        "971501234567",
	}
	assert.NoError(t, IssueGift(db, "g1", &issue, []models.IssueDocument{
		{DocumentType: "Handover Form", DocumentAttachment: "/private/files/form.pdf"},
	}))

	assert.NoError(t, RevertIssue(db, issue.Name))

	var gift models.Gift
	db.Where("name = ?", "g1").First(&gift)
	assert.Equal(t, models.GiftAvailable, gift.Status)
	assert.Empty(t, gift.GiftRecipient)
	assert.Empty(t, gift.OwnerFullName)
	assert.Empty(t, gift.MobileNumber)
	assert.Nil(t, gift.IssuedDate)

	var issueCount, docCount int64
	db.Model(&models.GiftIssue{}).Count(&issueCount)
	db.Model(&models.IssueDocument{}).Count(&docCount)
	assert.Equal(t, int64(0), issueCount)
	assert.Equal(t, int64(0), docCount)

	// The gift can be issued again.
	again := models.GiftIssue{
		OwnerFullName: "Saeed Al Falasi", CoordinatorFullName: "Omar Khalid",
		MobileNumber: "971521234567",
	}
	assert.NoError(t, IssueGift(db, "g1", &again, nil))
}

func TestRevertIssueNotFound(t *testing.T) {
	db := setupTestDB()

	err := RevertIssue(db, "nope")
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))
}

func TestUpdateDeliveryStatusDelivered(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.GiftIssue{
		Name: "i1", Gift: "g1",
		OwnerFullName: "Mohammed Al Nahyan", CoordinatorFullName: "Ahmed Hassan",
		MobileNumber: "971501234567", Status: models.DeliveryDispatched,
	})

	issue, err := UpdateDeliveryStatus(db, "i1", models.DeliveryDelivered, "note", "desc", nil)
	assert.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, issue.Status)
	assert.Equal(t, "note", issue.DeliveryNote)
	assert.NotNil(t, issue.DeliveryDate)
}

func TestUpdateDeliveryStatusExplicitDate(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.GiftIssue{
		Name: "i1", Gift: "g1",
		OwnerFullName: "Mohammed Al Nahyan", CoordinatorFullName: "Ahmed Hassan",
		MobileNumber: "971501234567", Status: models.DeliveryDispatched,
	})

	when := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	issue, err := UpdateDeliveryStatus(db, "i1", models.DeliveryDelivered, "", "", &when)
	assert.NoError(t, err)
	assert.Equal(t, when, issue.DeliveryDate.UTC())
}

func TestUpdateDeliveryStatusInvalid(t *testing.T) {
	db := setupTestDB()

	_, err := UpdateDeliveryStatus(db, "i1", "Lost", "", "", nil)
	assert.True(t, apperrors.IsKind(err, apperrors.Validation))
}

func TestPropagateRecipient(t *testing.T) {
	db := setupTestDB()
	db.Create(&models.GiftRecipient{
		Name: "r1", OwnerFullName: "Mohammed Al Nahyan", CoordinatorFullName: "Ahmed Hassan",
		CoordinatorMobileNo: "971551112222", CoordinatorEmiratesID: "784-1987-1234567-1",
		Address: "Al Ain Farm 12",
	})
	db.Create(&models.Gift{
		Name: "g1", GiftName: "Falcon", Status: models.GiftIssued, BarcodeValue: "00000001",
		GiftRecipient: "r1", OwnerFullName: "Old Name", MobileNumber: "971501234567",
	})
	db.Create(&models.Gift{
		Name: "g2", GiftName: "Returned Falcon", Status: models.GiftAvailable, BarcodeValue: "00000002",
		GiftRecipient: "r1", OwnerFullName: "Old Name",
	})
	db.Create(&models.GiftIssue{
		Name: "i1", Gift: "g1", GiftRecipient: "r1",
		OwnerFullName: "Old Name", CoordinatorFullName: "Old Coordinator",
		MobileNumber: "971501234567", Status: models.DeliveryDispatched,
	})
	db.Create(&models.GiftInterest{
		Name: "n1", Gift: "g1", GiftRecipient: "r1",
		OwnerFullName: "Old Name", CoordinatorFullName: "Old Coordinator",
		MobileNumber: "971501234567",
	})

	assert.NoError(t, PropagateRecipient(db, "r1"))

	var issue models.GiftIssue
	db.Where("name = ?", "i1").First(&issue)
	assert.Equal(t, "Mohammed Al Nahyan", issue.OwnerFullName)
	assert.Equal(t, "971551112222", issue.MobileNumber)

	var interest models.GiftInterest
	db.Where("name = ?", "n1").First(&interest)
	assert.Equal(t, "Mohammed Al Nahyan", interest.OwnerFullName)

	var issued models.Gift
	db.Where("name = ?", "g1").First(&issued)
	assert.Equal(t, "Mohammed Al Nahyan", issued.OwnerFullName)
	assert.Equal(t, "971551112222", issued.MobileNumber)

	// Gifts no longer issued keep their historical snapshot.
	var available models.Gift
	db.Where("name = ?", "g2").First(&available)
	assert.Equal(t, "Old Name", available.OwnerFullName)
}

func TestPropagateRecipientNotFound(t *testing.T) {
	db := setupTestDB()

	err := PropagateRecipient(db, "nope")
	assert.True(t, apperrors.IsKind(err, apperrors.NotFound))
}
