package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gift-tracker/pkg/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitGiftDB() *gorm.DB {
	host := getEnv("DB_HOST", "postgres")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "program")
	password := getEnv("DB_PASSWORD", "test")
	dbname := getEnv("DB_NAME", "gifts")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, dbname, port)

	log.Printf("Connecting to gift database: host=%s, port=%s", host, port)

	var db *gorm.DB
	var err error
	maxRetries := 10
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Printf("Database connection attempt %d/%d failed: %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(5 * time.Second)
		}
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	log.Println("Database connection established successfully")
	return db
}

// Migrate runs auto-migration for all record types and creates the partial
// unique index that enforces barcode uniqueness among live (non-cancelled)
// gifts. Soft-deleted gifts keep their barcode_value, so a plain unique index
// would block re-importing a cancelled gift's code.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Gift{},
		&models.GiftImage{},
		&models.GiftAttribute{},
		&models.GiftRecipient{},
		&models.GiftIssue{},
		&models.IssueDocument{},
		&models.GiftInterest{},
		&models.GiftCategory{},
		&models.User{},
	)
	if err != nil {
		return err
	}

	// Supported by both postgres and sqlite.
	return db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_gifts_barcode_value_live ON gifts (barcode_value) WHERE deleted_at IS NULL",
	).Error
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
