package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

var (
	supportedCurrencies  = []string{"COP", "USD", "EUR"}
	supportedDateFormats = []string{"DD/MM/YYYY", "MM/DD/YYYY", "YYYY-MM-DD"}
	backupFrequencies    = []string{"daily", "weekly", "monthly"}
)

// SettingsService owns the single system configuration record. Each settings
// domain is a typed struct validated before anything is written.
type SettingsService struct {
	repo Repository
}

func NewSettingsService(repo Repository) *SettingsService {
	return &SettingsService{repo: repo}
}

type UpdateSettingsInput struct {
	General       *model.GeneralSettings
	Localization  *model.LocalizationSettings
	Files         *model.FileSettings
	Backup        *model.BackupSettings
	Notifications *model.NotificationSettings
}

func defaultSettings() *model.Settings {
	return &model.Settings{
		General: model.GeneralSettings{
			CompanyName:           "OV-APP",
			SessionTimeoutMinutes: 30,
			MaintenanceMode:       false,
		},
		Localization: model.LocalizationSettings{
			Currency:   "COP",
			DateFormat: "DD/MM/YYYY",
			TimeZone:   "America/Bogota",
		},
		Files: model.FileSettings{
			MaxFileSizeMB:    10,
			AllowedFileTypes: []string{"jpg", "jpeg", "png", "pdf", "xlsx", "csv"},
		},
		Backup: model.BackupSettings{
			Enabled:   true,
			Frequency: "daily",
		},
		Notifications: model.NotificationSettings{
			EmailEnabled: true,
		},
	}
}

// Get returns the stored settings, creating the defaults on first access.
func (s *SettingsService) Get(ctx context.Context) (*model.Settings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	settings = defaultSettings()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Update applies the provided settings domains wholesale after validation.
func (s *SettingsService) Update(ctx context.Context, input UpdateSettingsInput) (*model.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	if input.General != nil {
		settings.General = *input.General
	}
	if input.Localization != nil {
		settings.Localization = *input.Localization
	}
	if input.Files != nil {
		settings.Files = *input.Files
	}
	if input.Backup != nil {
		settings.Backup = *input.Backup
	}
	if input.Notifications != nil {
		settings.Notifications = *input.Notifications
	}

	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Reset discards the stored record and recreates the defaults.
func (s *SettingsService) Reset(ctx context.Context) (*model.Settings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	defaults := defaultSettings()
	defaults.ID = settings.ID
	if err := s.repo.SaveSettings(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

func validateSettings(settings *model.Settings) error {
	if settings.General.SessionTimeoutMinutes < 5 || settings.General.SessionTimeoutMinutes > 480 {
		return fmt.Errorf("%w: session timeout must be between 5 and 480 minutes", ErrInvalidInput)
	}
	if len(strings.TrimSpace(settings.General.CompanyName)) < 2 {
		return fmt.Errorf("%w: company name must have at least 2 characters", ErrInvalidInput)
	}
	if settings.Files.MaxFileSizeMB < 1 || settings.Files.MaxFileSizeMB > 100 {
		return fmt.Errorf("%w: max file size must be between 1 and 100 MB", ErrInvalidInput)
	}
	if !contains(supportedCurrencies, settings.Localization.Currency) {
		return fmt.Errorf("%w: unsupported currency %q", ErrInvalidInput, settings.Localization.Currency)
	}
	if !contains(supportedDateFormats, settings.Localization.DateFormat) {
		return fmt.Errorf("%w: unsupported date format %q", ErrInvalidInput, settings.Localization.DateFormat)
	}
	if !contains(backupFrequencies, settings.Backup.Frequency) {
		return fmt.Errorf("%w: unsupported backup frequency %q", ErrInvalidInput, settings.Backup.Frequency)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
