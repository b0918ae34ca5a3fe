package practiceapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-cockpit/components/cockpit"
)

// ErrRateLimited is returned when the practice API answers 429.
var ErrRateLimited = errors.New("practiceapi: rate limited")

// ErrNotFound is returned when the practice API answers 404.
var ErrNotFound = errors.New("practiceapi: not found")

// DefaultRecentActivityLimit matches the size of the overview activity feed.
const DefaultRecentActivityLimit = 5

// HTTPConfig configures the HTTP practice API client.
type HTTPConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	// RecentActivityLimit bounds the activity feed merged into stats. Zero
	// uses DefaultRecentActivityLimit; negative skips the feed.
	RecentActivityLimit int
}

// HTTPClient reads cockpit inputs from the practice management REST API.
type HTTPClient struct {
	baseURL       string
	apiKey        string
	client        *http.Client
	activityLimit int
}

var (
	_ cockpit.StatsProvider     = (*HTTPClient)(nil)
	_ cockpit.PracticeDirectory = (*HTTPClient)(nil)
)

// NewHTTPClient builds a client for the practice API at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("practiceapi: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	limit := cfg.RecentActivityLimit
	if limit == 0 {
		limit = DefaultRecentActivityLimit
	}
	return &HTTPClient{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:        cfg.APIKey,
		client:        httpClient,
		activityLimit: limit,
	}, nil
}

// DashboardStats fetches the practice stats snapshot together with its recent
// activity feed. A failing feed leaves RecentActivities empty.
func (c *HTTPClient) DashboardStats(ctx context.Context, practiceID string) (*cockpit.DashboardStats, error) {
	practiceID = cockpit.SanitizePracticeID(practiceID)
	if practiceID == "" {
		return nil, cockpit.ErrPracticeRequired
	}
	var stats cockpit.DashboardStats
	if err := c.get(ctx, "/api/practices/"+url.PathEscape(practiceID)+"/dashboard-stats", nil, &stats); err != nil {
		return nil, err
	}
	if c.activityLimit > 0 && len(stats.RecentActivities) == 0 {
		activities, err := c.RecentActivities(ctx, practiceID, c.activityLimit)
		if err == nil {
			stats.RecentActivities = activities
		}
	}
	return &stats, nil
}

// RecentActivities fetches the latest practice activities.
func (c *HTTPClient) RecentActivities(ctx context.Context, practiceID string, limit int) ([]cockpit.RecentActivity, error) {
	query := url.Values{}
	query.Set("practiceId", practiceID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp activitiesResponse
	if err := c.get(ctx, "/api/dashboard/recent-activities", query, &resp); err != nil {
		return nil, err
	}
	return resp.activities(), nil
}

// CardSettings fetches the admin card settings. The endpoint returns the
// settings of the authenticated practice.
func (c *HTTPClient) CardSettings(ctx context.Context, practiceID string) (cockpit.CardSettings, error) {
	query := url.Values{}
	if practiceID = cockpit.SanitizePracticeID(practiceID); practiceID != "" {
		query.Set("practiceId", practiceID)
	}
	var resp settingsResponse
	if err := c.get(ctx, "/api/cockpit-settings", query, &resp); err != nil {
		return nil, err
	}
	if resp.Settings == nil {
		return cockpit.CardSettings{}, nil
	}
	return resp.Settings, nil
}

// Practice fetches the practice record behind practiceID.
func (c *HTTPClient) Practice(ctx context.Context, practiceID string) (*cockpit.Practice, error) {
	practiceID = cockpit.SanitizePracticeID(practiceID)
	if practiceID == "" {
		return nil, cockpit.ErrPracticeRequired
	}
	var practice cockpit.Practice
	if err := c.get(ctx, "/api/practices/"+url.PathEscape(practiceID), nil, &practice); err != nil {
		return nil, err
	}
	if practice.ID == "" {
		practice.ID = practiceID
	}
	return &practice, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("practiceapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("practiceapi: http request: %w", err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode >= 300:
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(resp.Body)
		return fmt.Errorf("practiceapi: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String()))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("practiceapi: decode response: %w", err)
	}
	return nil
}

type settingsResponse struct {
	Settings cockpit.CardSettings `json:"settings"`
}

// activitiesResponse accepts both a bare array and an {"activities": [...]}
// envelope.
type activitiesResponse struct {
	list []cockpit.RecentActivity
}

func (r *activitiesResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.list)
	}
	var envelope struct {
		Activities []cockpit.RecentActivity `json:"activities"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	r.list = envelope.Activities
	return nil
}

func (r activitiesResponse) activities() []cockpit.RecentActivity {
	if r.list == nil {
		return []cockpit.RecentActivity{}
	}
	return r.list
}
