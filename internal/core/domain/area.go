package domain

import (
	"encoding/json"
	"time"
)

// Congestion bounds applied after every mutation.
const (
	MinCongestion = 5
	MaxCongestion = 95

	// HotspotThreshold marks an area as a hotspot when its congestion is strictly above it.
	HotspotThreshold = 60
)

// Area is a monitored road segment or zone.
type Area struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Congestion int    `json:"congestion"` // percentage
}

// Validate checks seed data before it enters the store.
func (a Area) Validate() error {
	if a.ID == "" {
		return ErrInvalidArea
	}
	if a.Congestion < 0 || a.Congestion > 100 {
		return ErrInvalidArea
	}
	return nil
}

// IsHotspot reports whether the area is above the hotspot threshold.
func (a Area) IsHotspot() bool {
	return a.Congestion > HotspotThreshold
}

// ClampCongestion pins v into [MinCongestion, MaxCongestion].
func ClampCongestion(v int) int {
	return max(MinCongestion, min(MaxCongestion, v))
}

// TrafficSnapshot is an immutable, timestamped copy of every area.
// Areas keep the store's insertion order.
type TrafficSnapshot struct {
	Timestamp time.Time
	Areas     []Area
}

type snapshotJSON struct {
	Timestamp int64  `json:"timestamp"`
	Areas     []Area `json:"areas"`
}

// MarshalJSON encodes the timestamp as Unix milliseconds, the format dashboards expect.
func (s TrafficSnapshot) MarshalJSON() ([]byte, error) {
	areas := s.Areas
	if areas == nil {
		areas = []Area{}
	}
	return json.Marshal(snapshotJSON{
		Timestamp: s.Timestamp.UnixMilli(),
		Areas:     areas,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *TrafficSnapshot) UnmarshalJSON(data []byte) error {
	var raw snapshotJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Timestamp = time.UnixMilli(raw.Timestamp)
	s.Areas = raw.Areas
	return nil
}

// Find returns the area with the given id.
func (s TrafficSnapshot) Find(id string) (Area, bool) {
	for _, a := range s.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return Area{}, false
}

// AverageCongestion returns the rounded mean congestion, or 0 for an empty snapshot.
func (s TrafficSnapshot) AverageCongestion() int {
	if len(s.Areas) == 0 {
		return 0
	}
	sum := 0
	for _, a := range s.Areas {
		sum += a.Congestion
	}
	// round half up on non-negative values
	return (2*sum + len(s.Areas)) / (2 * len(s.Areas))
}

// Hotspots returns the areas above HotspotThreshold, in snapshot order.
func (s TrafficSnapshot) Hotspots() []Area {
	var hot []Area
	for _, a := range s.Areas {
		if a.IsHotspot() {
			hot = append(hot, a)
		}
	}
	return hot
}
