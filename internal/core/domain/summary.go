package domain

import (
	"encoding/json"
	"time"
)

// TrafficSummary is the dashboard analytics derived from one snapshot.
type TrafficSummary struct {
	Timestamp     time.Time `json:"-"`
	AvgCongestion int       `json:"avgCongestion"`
	Hotspots      []string  `json:"hotspots"`
	AvgEtaMin     int       `json:"avgEtaMin"`
}

// Summarize derives averages and hotspots from a snapshot.
// The ETA relation (10 + avg/6) is a mock, kept stable for the dashboard.
func Summarize(s TrafficSnapshot) TrafficSummary {
	avg := s.AverageCongestion()
	names := make([]string, 0)
	for _, a := range s.Hotspots() {
		names = append(names, a.Name)
	}
	return TrafficSummary{
		Timestamp:     s.Timestamp,
		AvgCongestion: avg,
		Hotspots:      names,
		AvgEtaMin:     10 + (avg+3)/6,
	}
}

func (s TrafficSummary) MarshalJSON() ([]byte, error) {
	type plain TrafficSummary
	return json.Marshal(struct {
		Timestamp int64 `json:"timestamp"`
		plain
	}{Timestamp: s.Timestamp.UnixMilli(), plain: plain(s)})
}
