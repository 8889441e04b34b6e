package model

import (
	"time"

	"bizradar/internal/domain/entity"

	"gorm.io/datatypes"
)

// BusinessModel mirrors the 'businesses' table, one row per tracked place in
// the committed snapshot. PlaceID is the upstream's stable identifier and the
// primary key; a business removed from the snapshot is deleted, not
// soft-deleted, because the notification history already records the removal.
type BusinessModel struct {
	PlaceID      string         `gorm:"type:varchar(64);primaryKey"`
	Name         string         `gorm:"type:varchar(255);not null"`
	Categories   datatypes.JSON `gorm:"type:jsonb"`
	Latitude     float64        `gorm:"not null"`
	Longitude    float64        `gorm:"not null"`
	Address      string         `gorm:"type:varchar(255)"`
	City         string         `gorm:"type:varchar(100)"`
	State        string         `gorm:"type:varchar(100)"`
	PostalCode   string         `gorm:"type:varchar(20)"`
	Country      string         `gorm:"type:varchar(100)"`
	Rating       *float64
	Popularity   *float64
	PriceTier    int
	Verified     bool
	Hours        string `gorm:"type:text"`
	Website      string `gorm:"type:varchar(512)"`
	Phone        string `gorm:"type:varchar(50)"`
	IsCompetitor bool   `gorm:"not null;default:false"`
	MissedScans  int    `gorm:"not null;default:0"`
	FirstSeen    time.Time
	LastSeen     time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (BusinessModel) TableName() string {
	return "businesses"
}

// ToBusinessDomain converts a GORM BusinessModel to a domain Business entity.
func ToBusinessDomain(data *BusinessModel) *entity.Business {
	if data == nil {
		return nil
	}

	return &entity.Business{
		PlaceID:    data.PlaceID,
		Name:       data.Name,
		Categories: decodeCategories(data.Categories),
		Location: entity.Location{
			Latitude:   data.Latitude,
			Longitude:  data.Longitude,
			Address:    data.Address,
			City:       data.City,
			State:      data.State,
			PostalCode: data.PostalCode,
			Country:    data.Country,
		},
		Rating:       data.Rating,
		Popularity:   data.Popularity,
		PriceTier:    data.PriceTier,
		Verified:     data.Verified,
		Hours:        data.Hours,
		Website:      data.Website,
		Phone:        data.Phone,
		IsCompetitor: data.IsCompetitor,
		MissedScans:  data.MissedScans,
		FirstSeen:    data.FirstSeen,
		LastSeen:     data.LastSeen,
	}
}

// FromBusinessDomain converts a domain Business entity to a GORM BusinessModel.
func FromBusinessDomain(data *entity.Business) *BusinessModel {
	if data == nil {
		return nil
	}

	return &BusinessModel{
		PlaceID:      data.PlaceID,
		Name:         data.Name,
		Categories:   encodeCategories(data.Categories),
		Latitude:     data.Location.Latitude,
		Longitude:    data.Location.Longitude,
		Address:      data.Location.Address,
		City:         data.Location.City,
		State:        data.Location.State,
		PostalCode:   data.Location.PostalCode,
		Country:      data.Location.Country,
		Rating:       data.Rating,
		Popularity:   data.Popularity,
		PriceTier:    data.PriceTier,
		Verified:     data.Verified,
		Hours:        data.Hours,
		Website:      data.Website,
		Phone:        data.Phone,
		IsCompetitor: data.IsCompetitor,
		MissedScans:  data.MissedScans,
		FirstSeen:    data.FirstSeen,
		LastSeen:     data.LastSeen,
	}
}
