// Package recipient holds the canonical person record logic: mobile number
// normalization, UAE format validation and the find-or-create resolver that
// deduplicates recipients across gift issues and interests.
package recipient

import (
	"errors"
	"regexp"
	"strings"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var uaeMobilePattern = regexp.MustCompile(`^971(50|51|52|54|55|56|58)\d{7}$`)

// NormalizeMobile strips spaces, dashes and plus signs, drops the local
// leading zero ("0521234567" form), and prepends the UAE country code when
// given a bare 9-digit local number.
func NormalizeMobile(raw string) string {
	mobile := strings.NewReplacer(" ", "", "-", "", "+", "").Replace(strings.TrimSpace(raw))
	if len(mobile) == 10 && strings.HasPrefix(mobile, "0") {
		mobile = mobile[1:]
	}
	if len(mobile) == 9 && !strings.HasPrefix(mobile, "971") {
		mobile = "971" + mobile
	}
	return mobile
}

// ValidateMobile checks an already-normalized number against the UAE mobile
// prefixes (50/51/52/54/55/56/58).
func ValidateMobile(normalized string) error {
	if !uaeMobilePattern.MatchString(normalized) {
		return apperrors.Validationf("please enter a valid UAE mobile number (e.g., 971501234567 or 501234567)")
	}
	return nil
}

// ValidateEmiratesID checks an optional Emirates ID and returns it formatted
// as XXX-XXXX-XXXXXXX-X. An empty input is valid and returns "".
func ValidateEmiratesID(raw string) (string, error) {
	cleaned := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return "", nil
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", apperrors.Validationf("Emirates ID must be 15 digits long")
		}
	}
	if len(cleaned) != 15 {
		return "", apperrors.Validationf("Emirates ID must be 15 digits long")
	}
	if !strings.HasPrefix(cleaned, "784") {
		return "", apperrors.Validationf("Emirates ID must start with 784")
	}
	return cleaned[:3] + "-" + cleaned[3:7] + "-" + cleaned[7:14] + "-" + cleaned[14:], nil
}

// TitleName trims and title-cases a person name the way recipients are stored.
func TitleName(raw string) string {
	return cases.Title(language.Und).String(strings.TrimSpace(raw))
}

type Input struct {
	OwnerFullName       string
	CoordinatorFullName string
	MobileNumber        string
	EmiratesID          string
	Address             string
	PersonPhoto         string
}

// Resolve finds or creates the canonical recipient record for the given
// person fields and returns its name.
//
// Match order: exact (mobile + both names) wins and is never modified; a
// name-only match is treated as the same person with updated contact info,
// so its mobile is overwritten and absent optional fields are backfilled;
// otherwise a new record is created. Two distinct people sharing both full
// names will collide into one record - this is a deduplication heuristic,
// not identification.
func Resolve(db *gorm.DB, in Input) (string, error) {
	owner := TitleName(in.OwnerFullName)
	coordinator := TitleName(in.CoordinatorFullName)
	if owner == "" || coordinator == "" || strings.TrimSpace(in.MobileNumber) == "" {
		return "", apperrors.Validationf("owner full name, coordinator full name, and mobile number are required")
	}

	mobile := NormalizeMobile(in.MobileNumber)
	if err := ValidateMobile(mobile); err != nil {
		return "", err
	}

	emiratesID, err := ValidateEmiratesID(in.EmiratesID)
	if err != nil {
		return "", err
	}

	var exact models.GiftRecipient
	err = db.Where("coordinator_mobile_no = ? AND owner_full_name = ? AND coordinator_full_name = ?",
		mobile, owner, coordinator).First(&exact).Error
	if err == nil {
		return exact.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var byNames models.GiftRecipient
	err = db.Where("owner_full_name = ? AND coordinator_full_name = ?", owner, coordinator).
		First(&byNames).Error
	if err == nil {
		byNames.CoordinatorMobileNo = mobile
		if emiratesID != "" && byNames.CoordinatorEmiratesID == "" {
			byNames.CoordinatorEmiratesID = emiratesID
		}
		if in.Address != "" && byNames.Address == "" {
			byNames.Address = strings.TrimSpace(in.Address)
		}
		if in.PersonPhoto != "" && byNames.PersonPhoto == "" {
			byNames.PersonPhoto = in.PersonPhoto
		}
		if err := db.Save(&byNames).Error; err != nil {
			return "", err
		}
		return byNames.Name, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	created := models.GiftRecipient{
		Name:                  uuid.New().String(),
		OwnerFullName:         owner,
		CoordinatorFullName:   coordinator,
		CoordinatorMobileNo:   mobile,
		CoordinatorEmiratesID: emiratesID,
		Address:               strings.TrimSpace(in.Address),
		PersonPhoto:           in.PersonPhoto,
	}
	if err := db.Create(&created).Error; err != nil {
		return "", err
	}
	return created.Name, nil
}
