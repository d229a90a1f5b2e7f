// Package barcode allocates gift barcode identifiers and renders printable
// label images (Code-128 symbol plus a human-readable caption).
package barcode

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math/rand"
	"strings"

	"gift-tracker/pkg/apperrors"
	"gift-tracker/pkg/models"

	bcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gorm.io/gorm"
)

// Label canvas is 25mm x 10mm at 300 DPI (1mm = 11.811px).
const (
	LabelWidth  = 295
	LabelHeight = 118
)

type Mode int

const (
	ModeAuto Mode = iota
	ModeManual
)

// Allocate returns a barcode value for a gift. In auto mode it samples random
// 8-digit numeric values until one is unused among live gifts; termination is
// probabilistic (10^8 keyspace vs expected gift volume), there is no fallback
// keyspace. In manual mode the supplied value is checked for uniqueness among
// live gifts, excluding excludeGift itself.
//
// The pre-check here is advisory: the partial unique index on live gifts is
// the authority, and a concurrent duplicate insert surfaces as a constraint
// violation the caller should treat as retryable (see IsUniquenessViolation).
func Allocate(db *gorm.DB, mode Mode, supplied string, excludeGift string) (string, error) {
	if mode == ModeManual {
		value := strings.TrimSpace(supplied)
		if value == "" {
			return "", apperrors.Validationf("barcode value is required when importing a barcode")
		}
		var count int64
		query := db.Model(&models.Gift{}).Where("barcode_value = ?", value)
		if excludeGift != "" {
			query = query.Where("name != ?", excludeGift)
		}
		if err := query.Count(&count).Error; err != nil {
			return "", err
		}
		if count > 0 {
			return "", apperrors.Conflictf("Barcode ID %s already exists", value)
		}
		return value, nil
	}

	for {
		value := fmt.Sprintf("%08d", rand.Intn(100000000))
		var count int64
		if err := db.Model(&models.Gift{}).Where("barcode_value = ?", value).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return value, nil
		}
	}
}

// IsUniquenessViolation reports whether err is a duplicate-key error from the
// barcode unique index, i.e. a concurrent allocation won the race and the
// caller should re-allocate.
func IsUniquenessViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// RenderLabel renders the value as a PNG label: the Code-128 symbol fills the
// top 70% of the canvas, the value is printed centered in the bottom 30%.
func RenderLabel(value string) ([]byte, error) {
	if value == "" {
		return nil, apperrors.Validationf("barcode value is required")
	}

	symbol, err := code128.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("encode barcode: %w", err)
	}

	symbolHeight := LabelHeight * 7 / 10
	scaled, err := bcode.Scale(symbol, LabelWidth, symbolHeight)
	if err != nil {
		return nil, fmt.Errorf("scale barcode: %w", err)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, LabelWidth, LabelHeight))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, LabelWidth, symbolHeight), scaled, scaled.Bounds().Min, draw.Src)

	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: face,
	}
	textWidth := drawer.MeasureString(value).Ceil()
	textHeight := LabelHeight - symbolHeight
	baseline := symbolHeight + (textHeight+face.Ascent)/2
	drawer.Dot = fixed.Point26_6{
		X: fixed.I((LabelWidth - textWidth) / 2),
		Y: fixed.I(baseline),
	}
	drawer.DrawString(value)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
