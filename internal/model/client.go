package model

import "time"

type Client struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ClientStats struct {
	TotalContracts  int64
	ActiveContracts int64
	TotalVolume     float64
	AttendedVolume  float64
	PendingVolume   float64
}
