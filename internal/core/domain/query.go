package domain

import (
	"encoding/json"
	"time"
)

// RouteOption is one mocked route returned by a route search.
type RouteOption struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	DistanceKM float64 `json:"distance_km"`
	EtaMin     int     `json:"eta_min"`
}

// RouteSearch is the result of a route query between two points.
type RouteSearch struct {
	Origin        string        `json:"origin"`
	Dest          string        `json:"dest"`
	Generated     time.Time     `json:"-"`
	AvgCongestion int           `json:"avgCongestion"`
	Routes        []RouteOption `json:"routes"`
}

// MarshalJSON adds the generation time as Unix milliseconds.
func (r RouteSearch) MarshalJSON() ([]byte, error) {
	type plain RouteSearch
	return json.Marshal(struct {
		plain
		Generated int64 `json:"generated"`
	}{plain: plain(r), Generated: r.Generated.UnixMilli()})
}

// Departure is one upcoming transit departure.
type Departure struct {
	Line   string `json:"line"`
	InMin  int    `json:"in_min"`
	Status string `json:"status"`
}

// TransitBoard is the departure board for a single stop.
type TransitBoard struct {
	Stop string      `json:"stop"`
	Next []Departure `json:"next"`
}
