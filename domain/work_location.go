package domain

import (
	"attendance_ms/util"

	"github.com/google/uuid"
)

type WorkLocation struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Address      string    `json:"address"`
	Latitude     float64   `gorm:"not null" json:"latitude"`
	Longitude    float64   `gorm:"not null" json:"longitude"`
	RadiusMeters float64   `gorm:"not null;default:100" json:"radius_meters"`
}

func (WorkLocation) TableName() string {
	return "locations"
}

// Distance is the great-circle distance in meters from the site center.
func (w *WorkLocation) Distance(lat, lng float64) float64 {
	return util.HaversineMeters(w.Latitude, w.Longitude, lat, lng)
}

// Covers reports whether a fix lies inside the site radius, giving the fix the
// benefit of its reported accuracy.
func (w *WorkLocation) Covers(loc Location) bool {
	return w.Distance(loc.Latitude, loc.Longitude)-loc.Accuracy <= w.RadiusMeters
}

// NearestCovering picks the closest site that covers loc.
func NearestCovering(sites []WorkLocation, loc Location) (*WorkLocation, bool) {
	var best *WorkLocation
	bestDist := 0.0
	for i := range sites {
		if !sites[i].Covers(loc) {
			continue
		}
		d := sites[i].Distance(loc.Latitude, loc.Longitude)
		if best == nil || d < bestDist {
			best, bestDist = &sites[i], d
		}
	}
	return best, best != nil
}
