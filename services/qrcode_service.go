package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"github.com/yeremiapane/digital-menu/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QRGenerator interface {
	Generate(content string) ([]byte, error)
}

// DefaultQRGenerator renders PNG QR codes.
type DefaultQRGenerator struct {
	Size int
}

func (g DefaultQRGenerator) Generate(content string) ([]byte, error) {
	size := g.Size
	if size == 0 {
		size = 512
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}

// QRCodeService keeps exactly one active QR code image for table display.
type QRCodeService struct {
	db          *gorm.DB
	blobs       BlobStore
	generator   QRGenerator
	frontendURL string
}

func NewQRCodeService(db *gorm.DB, blobs BlobStore, generator QRGenerator, frontendURL string) *QRCodeService {
	return &QRCodeService{
		db:          db,
		blobs:       blobs,
		generator:   generator,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Upload stores the image and makes it the active QR code. The previous image
// is deleted from storage once the switch is committed.
func (s *QRCodeService) Upload(ctx context.Context, filename string, r io.Reader) (*models.QRCode, error) {
	blob, err := uploadBlob(ctx, s.blobs, &Upload{Filename: filename, Reader: r})
	if err != nil {
		return nil, err
	}

	var previous []models.QRCode
	qr := models.QRCode{
		ImageURL: blob.URL,
		PublicID: blob.PublicID,
		IsActive: true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("is_active = ?", true).Find(&previous).Error; err != nil {
			return err
		}
		if len(previous) > 0 {
			if err := tx.Model(&models.QRCode{}).Where("is_active = ?", true).Updates(map[string]interface{}{
				"is_active":  false,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return err
			}
		}
		return tx.Create(&qr).Error
	})
	if err != nil {
		discardBlob(ctx, s.blobs, blob.PublicID)
		return nil, err
	}

	for _, p := range previous {
		discardBlob(ctx, s.blobs, p.PublicID)
	}
	return &qr, nil
}

// Generate renders a QR code that opens the customer menu and activates it.
func (s *QRCodeService) Generate(ctx context.Context) (*models.QRCode, error) {
	png, err := s.generator.Generate(s.frontendURL + "/menu")
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return s.Upload(ctx, "qr-code.png", bytes.NewReader(png))
}

func (s *QRCodeService) Active(ctx context.Context) (*models.QRCode, error) {
	var qr models.QRCode
	err := s.db.WithContext(ctx).Where("is_active = ?", true).Order("id DESC").First(&qr).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundf("no active QR code found")
	}
	if err != nil {
		return nil, err
	}
	return &qr, nil
}
