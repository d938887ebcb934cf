package model

import "time"

type GeneralSettings struct {
	CompanyName           string
	SessionTimeoutMinutes int
	MaintenanceMode       bool
}

type LocalizationSettings struct {
	Currency   string
	DateFormat string
	TimeZone   string
}

type FileSettings struct {
	MaxFileSizeMB    int
	AllowedFileTypes []string
}

type BackupSettings struct {
	Enabled   bool
	Frequency string
}

type NotificationSettings struct {
	EmailEnabled bool
}

// Settings is the single system configuration record, split into one struct
// per settings domain so every field is typed and validated at the boundary.
type Settings struct {
	ID            int64
	General       GeneralSettings
	Localization  LocalizationSettings
	Files         FileSettings
	Backup        BackupSettings
	Notifications NotificationSettings
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
