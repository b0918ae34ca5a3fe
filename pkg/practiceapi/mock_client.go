package practiceapi

import (
	"context"
	"sync"

	"github.com/goliatone/go-cockpit/components/cockpit"
)

// MockData seeds deterministic practice API responses for tests or demos.
type MockData struct {
	Stats     map[string]cockpit.DashboardStats
	Practices map[string]cockpit.Practice
}

// MockClient serves StatsProvider and PracticeDirectory from fixtures.
type MockClient struct {
	mu    sync.RWMutex
	data  MockData
	calls int
}

var (
	_ cockpit.StatsProvider     = (*MockClient)(nil)
	_ cockpit.PracticeDirectory = (*MockClient)(nil)
)

// NewMockClient builds a mock client from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	return &MockClient{data: data}
}

// DashboardStats returns a copy of the practice fixture or ErrNotFound.
func (c *MockClient) DashboardStats(_ context.Context, practiceID string) (*cockpit.DashboardStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	stats, ok := c.data.Stats[practiceID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneStats(stats)
	return &out, nil
}

// Practice returns the practice fixture or ErrNotFound.
func (c *MockClient) Practice(_ context.Context, practiceID string) (*cockpit.Practice, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	practice, ok := c.data.Practices[practiceID]
	if !ok {
		return nil, ErrNotFound
	}
	return &practice, nil
}

// Calls reports how many stats lookups were served.
func (c *MockClient) Calls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls
}

func cloneStats(stats cockpit.DashboardStats) cockpit.DashboardStats {
	out := stats
	out.ActivityData = append([]cockpit.ActivityPoint(nil), stats.ActivityData...)
	out.WeeklyTasksData = append([]cockpit.WeeklyTaskDay(nil), stats.WeeklyTasksData...)
	out.TodayScheduleData = append([]cockpit.ScheduleSlot(nil), stats.TodayScheduleData...)
	out.RecentActivities = append([]cockpit.RecentActivity(nil), stats.RecentActivities...)
	return out
}
