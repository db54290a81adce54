package query

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/lucsky/cuid"

	"github.com/lcalzada-xor/navify/internal/core/domain"
	"github.com/lcalzada-xor/navify/internal/core/ports"
)

const (
	DefaultOrigin = "A"
	DefaultDest   = "B"

	// congestionPenalty converts average congestion (percent) into extra minutes.
	congestionPenalty = 0.1
)

type routeTemplate struct {
	name       string
	distanceKM float64
	baseMin    float64
	spreadMin  float64
	floorMin   int
}

var routeTemplates = []routeTemplate{
	{name: "Fastest", distanceKM: 6.2, baseMin: 10, spreadMin: 8, floorMin: 8},
	{name: "Balanced", distanceKM: 7.4, baseMin: 12, spreadMin: 10, floorMin: 10},
	{name: "Scenic (avoid highway)", distanceKM: 9.8, baseMin: 15, spreadMin: 12, floorMin: 12},
}

// Float64Source yields uniform draws in [0,1).
type Float64Source interface {
	Float64() float64
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NewRand returns a goroutine-safe Float64Source.
func NewRand(seed int64) Float64Source {
	return &lockedRand{rng: rand.New(rand.NewSource(seed))}
}

// RouteService builds mocked route options whose ETAs grow with the current
// average congestion plus some jitter.
type RouteService struct {
	source ports.SnapshotSource
	rng    Float64Source
	clock  clockwork.Clock
	newID  func() string
}

// NewRouteService wires a route service to the traffic store. rng and clock may be nil.
func NewRouteService(source ports.SnapshotSource, rng Float64Source, clock clockwork.Clock) *RouteService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if rng == nil {
		rng = NewRand(clock.Now().UnixNano())
	}
	return &RouteService{
		source: source,
		rng:    rng,
		clock:  clock,
		newID:  cuid.New,
	}
}

// Search returns three route options between origin and dest.
func (s *RouteService) Search(_ context.Context, origin, dest string) domain.RouteSearch {
	if origin == "" {
		origin = DefaultOrigin
	}
	if dest == "" {
		dest = DefaultDest
	}

	avg := s.source.Snapshot().AverageCongestion()
	penalty := float64(avg) * congestionPenalty

	routes := make([]domain.RouteOption, 0, len(routeTemplates))
	for _, tpl := range routeTemplates {
		eta := int(math.Round(tpl.baseMin + s.rng.Float64()*tpl.spreadMin + penalty))
		routes = append(routes, domain.RouteOption{
			ID:         s.newID(),
			Name:       tpl.name,
			DistanceKM: tpl.distanceKM,
			EtaMin:     max(tpl.floorMin, eta),
		})
	}

	return domain.RouteSearch{
		Origin:        origin,
		Dest:          dest,
		Generated:     s.clock.Now(),
		AvgCongestion: avg,
		Routes:        routes,
	}
}

var _ ports.RouteService = (*RouteService)(nil)
