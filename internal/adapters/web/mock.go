package web

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lcalzada-xor/navify/internal/core/domain"
)

// MockSessionService is a mock of ports.SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Record(ctx context.Context, subscriberID string, action domain.SessionAction, remoteAddr, details string) error {
	args := m.Called(ctx, subscriberID, action, remoteAddr, details)
	return args.Error(0)
}

func (m *MockSessionService) Recent(ctx context.Context, limit int) ([]domain.SessionEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SessionEvent), args.Error(1)
}

// MockRouteService is a mock of ports.RouteService
type MockRouteService struct {
	mock.Mock
}

func (m *MockRouteService) Search(ctx context.Context, origin, dest string) domain.RouteSearch {
	args := m.Called(ctx, origin, dest)
	return args.Get(0).(domain.RouteSearch)
}

// MockTransitService is a mock of ports.TransitService
type MockTransitService struct {
	mock.Mock
}

func (m *MockTransitService) Board(ctx context.Context) domain.TransitBoard {
	args := m.Called(ctx)
	return args.Get(0).(domain.TransitBoard)
}
