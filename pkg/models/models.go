package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	GiftAvailable = "Available"
	GiftIssued    = "Issued"
)

const (
	DeliveryDispatched = "Dispatched"
	DeliveryDelivered  = "Delivered"
)

type Gift struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"type:uuid;uniqueIndex;not null"`
	GiftName      string `gorm:"size:140;not null"`
	GiftID        string `gorm:"size:80;index"`
	Description   string
	Category      string `gorm:"size:40;index"`
	Gender        string `gorm:"size:20"`
	Breed         string `gorm:"size:80"`
	Weight        float64
	FarmName      string `gorm:"size:140"`
	Status        string `gorm:"size:20;not null;default:'Available'"`
	ImportBarcode bool
	// Unique among live gifts; the partial index is created in database.Migrate.
	BarcodeValue string `gorm:"size:80;not null;index"`
	Barcode      string `gorm:"size:255"` // stored label image reference

	// Snapshot of the active recipient, populated only while Status is Issued.
	GiftRecipient       string `gorm:"size:40;index"`
	OwnerFullName       string `gorm:"size:140"`
	CoordinatorFullName string `gorm:"size:140"`
	MobileNumber        string `gorm:"size:20"`
	EmiratesID          string `gorm:"size:20"`
	Address             string
	PersonPhoto         string `gorm:"size:255"`
	IssuedDate          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

type GiftImage struct {
	ID     uint   `gorm:"primaryKey"`
	GiftID uint   `gorm:"index;not null"`
	Image  string `gorm:"size:255;not null"`
	Idx    int
}

type GiftAttribute struct {
	ID             uint   `gorm:"primaryKey"`
	GiftID         uint   `gorm:"index;not null"`
	AttributeName  string `gorm:"size:140;not null"`
	AttributeValue string `gorm:"not null"`
}

type GiftRecipient struct {
	ID                    uint   `gorm:"primaryKey"`
	Name                  string `gorm:"type:uuid;uniqueIndex;not null"`
	OwnerFullName         string `gorm:"size:140;not null"`
	CoordinatorFullName   string `gorm:"size:140;not null"`
	CoordinatorMobileNo   string `gorm:"size:20;not null;index"`
	CoordinatorEmiratesID string `gorm:"size:20"`
	Address               string
	PersonPhoto           string `gorm:"size:255"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             gorm.DeletedAt `gorm:"index"`
}

type GiftIssue struct {
	ID                  uint   `gorm:"primaryKey"`
	Name                string `gorm:"type:uuid;uniqueIndex;not null"`
	Gift                string `gorm:"size:40;not null;index"`
	GiftRecipient       string `gorm:"size:40;index"`
	OwnerFullName       string `gorm:"size:140;not null"`
	CoordinatorFullName string `gorm:"size:140;not null"`
	MobileNumber        string `gorm:"size:20;not null"`
	EmiratesID          string `gorm:"size:20"`
	Address             string
	PersonPhoto         string `gorm:"size:255"`
	Date                *time.Time
	Status              string `gorm:"size:20;not null;default:'Dispatched'"`
	DeliveryNote        string
	DeliveryDescription string
	DeliveryDate        *time.Time
	CreatedBy           string `gorm:"size:80"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

type IssueDocument struct {
	ID                 uint   `gorm:"primaryKey"`
	IssueID            uint   `gorm:"index;not null"`
	DocumentType       string `gorm:"size:80;not null"`
	DocumentAttachment string `gorm:"size:255;not null"`
	Description        string
}

type GiftInterest struct {
	ID                  uint   `gorm:"primaryKey"`
	Name                string `gorm:"type:uuid;uniqueIndex;not null"`
	Gift                string `gorm:"size:40;not null;index"`
	GiftRecipient       string `gorm:"size:40;index"`
	OwnerFullName       string `gorm:"size:140;not null"`
	CoordinatorFullName string `gorm:"size:140;not null"`
	MobileNumber        string `gorm:"size:20;not null"`
	EmiratesID          string `gorm:"size:20"`
	Address             string
	Date                *time.Time
	CreatedBy           string `gorm:"size:80"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	DeletedAt           gorm.DeletedAt `gorm:"index"`
}

type GiftCategory struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"type:uuid;uniqueIndex;not null"`
	CategoryName string `gorm:"size:80;not null;index"`
	Description  string
	CreatedBy    string `gorm:"size:80"`
	ModifiedBy   string `gorm:"size:80"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:80;not null;uniqueIndex"`
	FullName     string `gorm:"size:140;not null"`
	Email        string `gorm:"size:140"`
	Phone        string `gorm:"size:20"`
	Bio          string
	BirthDate    *time.Time
	Role         string `gorm:"size:40;not null;default:'Event Coordinator'"`
	PasswordHash string `gorm:"size:64"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}
