package ordering

import (
	"github.com/google/uuid"
)

// Station is a kitchen work station. Orders are routed to it when any item
// carries one of its tags.
type Station struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	RestaurantID string    `json:"restaurant_id" bson:"restaurant_id"`
	LocationID   uuid.UUID `json:"location_id" bson:"location_id"`
	Name         string    `json:"name" bson:"name"`
	Tags         []string  `json:"tags" bson:"tags"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
}

func (s *Station) GetID() uuid.UUID {
	return s.ID
}

func (s *Station) ResourceType() string {
	return "station"
}

func (s *Station) SetID(id uuid.UUID) {
	s.ID = id
}

func (s *Station) EnsureID() {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
}

// MatchesAny reports whether the station serves any of the given tags.
func (s *Station) MatchesAny(tags []string) bool {
	for _, tag := range tags {
		for _, own := range s.Tags {
			if tag == own {
				return true
			}
		}
	}
	return false
}
