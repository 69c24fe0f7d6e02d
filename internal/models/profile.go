package models

import "github.com/google/uuid"

// Profile holds the agronomic data attached to a user. Created empty during
// registration; a user may exist without one and readers must tolerate that.
type Profile struct {
	BaseModel
	UserID       uuid.UUID `gorm:"type:uuid;uniqueIndex" json:"user_id"`
	SoilType     string    `json:"soil_type"`
	SoilPH       *float64  `json:"soil_ph"`
	FarmSize     *float64  `json:"farm_size"`
	FarmLocation string    `json:"farm_location"`
	CropsGrown   string    `json:"crops_grown"`
}
