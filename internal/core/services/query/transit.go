package query

import (
	"context"
	"fmt"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

const (
	DefaultStop = "Central Bus Stop"

	// delayPerHotspot is added to every departure for each congested area.
	delayPerHotspot = 2
)

type scheduledDeparture struct {
	line      string
	inMin     int
	baseDelay int
}

var centralSchedule = []scheduledDeparture{
	{line: "Bus 12", inMin: 5},
	{line: "Bus 3", inMin: 8, baseDelay: 4},
	{line: "Bus 5", inMin: 20},
}

// TransitService derives the departure board from the live traffic state:
// every hotspot delays each line by delayPerHotspot minutes.
type TransitService struct {
	source ports.SnapshotSource
	stop   string
}

// NewTransitService wires a transit service to the traffic store.
func NewTransitService(source ports.SnapshotSource) *TransitService {
	return &TransitService{source: source, stop: DefaultStop}
}

// Board returns the upcoming departures for the stop.
func (s *TransitService) Board(_ context.Context) domain.TransitBoard {
	hotspots := len(s.source.Snapshot().Hotspots())
	extra := hotspots * delayPerHotspot

	next := make([]domain.Departure, 0, len(centralSchedule))
	for _, d := range centralSchedule {
		delay := d.baseDelay + extra
		next = append(next, domain.Departure{
			Line:   d.line,
			InMin:  d.inMin + delay,
			Status: statusFor(delay),
		})
	}
	return domain.TransitBoard{Stop: s.stop, Next: next}
}

func statusFor(delay int) string {
	if delay <= 0 {
		return "On time"
	}
	return fmt.Sprintf("Delayed %dm", delay)
}

var _ ports.TransitService = (*TransitService)(nil)
