package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/invoice"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var logoExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
}

// BrandingInput is the editable part of the sign-in branding.
type BrandingInput struct {
	DisplayName string
	Slogan      string
	Description string
}

// SettingsService manages the agency identity printed on invoices and the
// global sign-in branding.
type SettingsService struct {
	db     *gorm.DB
	blob   storage.Blob
	logger *zap.Logger
}

func NewSettingsService(db *gorm.DB, blob storage.Blob, logger *zap.Logger) *SettingsService {
	return &SettingsService{db: db, blob: blob, logger: logger}
}

// Agency returns the user's settings. Users who never saved any get an empty
// row, which the renderer prints with placeholders.
func (s *SettingsService) Agency(ctx context.Context, sess auth.Session) (models.AgencySettings, error) {
	if err := requireSession(sess); err != nil {
		return models.AgencySettings{}, err
	}
	var row models.AgencySettings
	err := s.db.WithContext(ctx).Scopes(models.OwnedBy(sess.UserID)).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AgencySettings{UserID: sess.UserID}, nil
	}
	if err != nil {
		return models.AgencySettings{}, fmt.Errorf("load agency settings: %w", err)
	}
	return row, nil
}

// SaveAgency upserts name, address and GSTIN. Empty values are stored as
// empty; the logo is left alone.
func (s *SettingsService) SaveAgency(ctx context.Context, sess auth.Session, p invoice.Party) (models.AgencySettings, error) {
	return s.upsertAgency(ctx, sess, map[string]any{
		"name":    strings.TrimSpace(p.Name),
		"address": strings.TrimSpace(p.Address),
		"gstin":   strings.TrimSpace(p.GSTIN),
	})
}

// UploadAgencyLogo stores data and points the settings at it.
func (s *SettingsService) UploadAgencyLogo(ctx context.Context, sess auth.Session, data []byte) (models.AgencySettings, error) {
	if err := requireSession(sess); err != nil {
		return models.AgencySettings{}, err
	}
	key, err := s.putLogo(ctx, fmt.Sprintf("logos/%d", sess.UserID), data)
	if err != nil {
		return models.AgencySettings{}, err
	}
	return s.upsertAgency(ctx, sess, map[string]any{"logo_key": key})
}

func (s *SettingsService) upsertAgency(ctx context.Context, sess auth.Session, fields map[string]any) (models.AgencySettings, error) {
	if err := requireSession(sess); err != nil {
		return models.AgencySettings{}, err
	}
	var row models.AgencySettings
	err := s.db.WithContext(ctx).
		Where(models.AgencySettings{UserID: sess.UserID}).
		Assign(fields).
		FirstOrCreate(&row).Error
	if err != nil {
		return models.AgencySettings{}, fmt.Errorf("save agency settings: %w", err)
	}
	return row, nil
}

// AgencyLogo fetches the user's logo. Any failure is logged and yields nil so
// documents can still be produced without it.
func (s *SettingsService) AgencyLogo(ctx context.Context, settings models.AgencySettings) []byte {
	if settings.LogoKey == "" {
		return nil
	}
	data, err := s.blob.Get(ctx, settings.LogoKey)
	if err != nil {
		s.logger.Warn("agency logo unavailable, continuing without logo",
			zap.Uint("user_id", settings.UserID),
			zap.String("logo_key", settings.LogoKey),
			zap.Error(err))
		return nil
	}
	return data
}

// Branding returns the global sign-in branding, falling back to the default
// display name when nothing was ever saved.
func (s *SettingsService) Branding(ctx context.Context) (models.LoginBranding, error) {
	var row models.LoginBranding
	err := s.db.WithContext(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LoginBranding{DisplayName: models.DefaultDisplayName}, nil
	}
	if err != nil {
		return models.LoginBranding{}, fmt.Errorf("load branding: %w", err)
	}
	if row.DisplayName == "" {
		row.DisplayName = models.DefaultDisplayName
	}
	return row, nil
}

// SaveBranding replaces the text fields of the sign-in branding.
func (s *SettingsService) SaveBranding(ctx context.Context, sess auth.Session, in BrandingInput) (models.LoginBranding, error) {
	if err := requireSession(sess); err != nil {
		return models.LoginBranding{}, err
	}
	return s.upsertBranding(ctx, map[string]any{
		"display_name": strings.TrimSpace(in.DisplayName),
		"slogan":       strings.TrimSpace(in.Slogan),
		"description":  strings.TrimSpace(in.Description),
	})
}

// UploadBrandingLogo stores data as the sign-in logo.
func (s *SettingsService) UploadBrandingLogo(ctx context.Context, sess auth.Session, data []byte) (models.LoginBranding, error) {
	if err := requireSession(sess); err != nil {
		return models.LoginBranding{}, err
	}
	key, err := s.putLogo(ctx, "branding", data)
	if err != nil {
		return models.LoginBranding{}, err
	}
	return s.upsertBranding(ctx, map[string]any{"logo_key": key})
}

// BrandingLogo returns the sign-in logo bytes and their content type.
func (s *SettingsService) BrandingLogo(ctx context.Context) ([]byte, string, error) {
	b, err := s.Branding(ctx)
	if err != nil {
		return nil, "", err
	}
	if b.LogoKey == "" {
		return nil, "", ErrNotFound
	}
	data, err := s.blob.Get(ctx, b.LogoKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", err
	}
	return data, http.DetectContentType(data), nil
}

func (s *SettingsService) upsertBranding(ctx context.Context, fields map[string]any) (models.LoginBranding, error) {
	var row models.LoginBranding
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Order("id").First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = models.LoginBranding{DisplayName: models.DefaultDisplayName}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		if err := tx.Model(&row).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&row, row.ID).Error
	})
	if err != nil {
		return models.LoginBranding{}, fmt.Errorf("save branding: %w", err)
	}
	if row.DisplayName == "" {
		row.DisplayName = models.DefaultDisplayName
	}
	return row, nil
}

// putLogo checks that data is a supported image and stores it under dir with
// a fresh name.
func (s *SettingsService) putLogo(ctx context.Context, dir string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", &ValidationError{Fields: map[string]string{"logo": "required"}}
	}
	contentType := http.DetectContentType(data)
	ext, ok := logoExtensions[contentType]
	if !ok {
		return "", &ValidationError{Fields: map[string]string{"logo": "unsupported_image_type"}}
	}
	key := dir + "/" + uuid.NewString() + ext
	if err := s.blob.Put(ctx, key, contentType, data); err != nil {
		return "", fmt.Errorf("store logo: %w", err)
	}
	s.logger.Info("logo stored", zap.String("key", key), zap.Int("size", len(data)))
	return key, nil
}
