package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/ovapp/sales-ledger/internal/model"
)

type settingsRow struct {
	ID                    int64
	CompanyName           string
	SessionTimeoutMinutes int
	MaintenanceMode       bool
	Currency              string
	DateFormat            string
	TimeZone              string
	MaxFileSize           int
	AllowedFileTypes      string
	BackupEnabled         bool
	BackupFrequency       string
	EmailNotifications    bool
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (s *Store) GetSettings(ctx context.Context) (*model.Settings, error) {
	var row settingsRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			id,
			company_name,
			session_timeout_minutes,
			maintenance_mode,
			currency,
			date_format,
			time_zone,
			max_file_size_mb AS max_file_size,
			allowed_file_types,
			backup_enabled,
			backup_frequency,
			email_notifications,
			created_at,
			updated_at
		FROM system_settings
		ORDER BY id DESC
		LIMIT 1
	`).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &model.Settings{
		ID: row.ID,
		General: model.GeneralSettings{
			CompanyName:           row.CompanyName,
			SessionTimeoutMinutes: row.SessionTimeoutMinutes,
			MaintenanceMode:       row.MaintenanceMode,
		},
		Localization: model.LocalizationSettings{
			Currency:   row.Currency,
			DateFormat: row.DateFormat,
			TimeZone:   row.TimeZone,
		},
		Files: model.FileSettings{
			MaxFileSizeMB:    row.MaxFileSize,
			AllowedFileTypes: splitList(row.AllowedFileTypes),
		},
		Backup: model.BackupSettings{
			Enabled:   row.BackupEnabled,
			Frequency: row.BackupFrequency,
		},
		Notifications: model.NotificationSettings{
			EmailEnabled: row.EmailNotifications,
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings *model.Settings) error {
	fileTypes := strings.Join(settings.Files.AllowedFileTypes, ",")

	if settings.ID == 0 {
		var id int64
		err := s.db.WithContext(ctx).Raw(`
			INSERT INTO system_settings (
				company_name,
				session_timeout_minutes,
				maintenance_mode,
				currency,
				date_format,
				time_zone,
				max_file_size_mb,
				allowed_file_types,
				backup_enabled,
				backup_frequency,
				email_notifications
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`,
			settings.General.CompanyName,
			settings.General.SessionTimeoutMinutes,
			settings.General.MaintenanceMode,
			settings.Localization.Currency,
			settings.Localization.DateFormat,
			settings.Localization.TimeZone,
			settings.Files.MaxFileSizeMB,
			fileTypes,
			settings.Backup.Enabled,
			settings.Backup.Frequency,
			settings.Notifications.EmailEnabled,
		).Scan(&id).Error
		if err != nil {
			return err
		}
		settings.ID = id
		return nil
	}

	return s.db.WithContext(ctx).Exec(`
		UPDATE system_settings
		SET
			company_name = ?,
			session_timeout_minutes = ?,
			maintenance_mode = ?,
			currency = ?,
			date_format = ?,
			time_zone = ?,
			max_file_size_mb = ?,
			allowed_file_types = ?,
			backup_enabled = ?,
			backup_frequency = ?,
			email_notifications = ?,
			updated_at = NOW()
		WHERE id = ?
	`,
		settings.General.CompanyName,
		settings.General.SessionTimeoutMinutes,
		settings.General.MaintenanceMode,
		settings.Localization.Currency,
		settings.Localization.DateFormat,
		settings.Localization.TimeZone,
		settings.Files.MaxFileSizeMB,
		fileTypes,
		settings.Backup.Enabled,
		settings.Backup.Frequency,
		settings.Notifications.EmailEnabled,
		settings.ID,
	).Error
}

func splitList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
