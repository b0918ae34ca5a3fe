package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-cockpit/components/cockpit"
	"github.com/goliatone/go-cockpit/components/cockpit/commands"
	"github.com/goliatone/go-cockpit/components/cockpit/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newServiceHandlers(svc *cockpit.Service) *Handlers {
	return &Handlers{
		Dashboard:         queries.NewDashboardQuery(svc),
		Preferences:       queries.NewPreferencesQuery(svc),
		CardSettings:      queries.NewCardSettingsQuery(svc),
		SavePreferences:   commands.NewSavePreferencesCommand(svc, nil),
		ResetPreferences:  commands.NewResetPreferencesCommand(svc, nil),
		SaveCardSetting:   commands.NewSaveCardSettingCommand(svc, nil),
		DeleteCardSetting: commands.NewDeleteCardSettingCommand(svc, nil),
	}
}

func viewerRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("X-Practice-ID", "p1")
	req.Header.Set("X-User-ID", "u1")
	return req
}

func TestViewerFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?practice_id=p9", nil)
	req.Header.Set("X-User-ID", " u1 ")
	req.Header.Set("X-User-Roles", "admin, , owner")
	req.Header.Set("Accept-Language", "en-GB;q=0.9, de")

	viewer := ViewerFromRequest(req)
	assert.Equal(t, "p9", viewer.PracticeID)
	assert.Equal(t, "u1", viewer.UserID)
	assert.Equal(t, []string{"admin", "owner"}, viewer.Roles)
	assert.Equal(t, "en-GB", viewer.Locale)

	req.Header.Set("X-Practice-ID", "undefined")
	assert.Equal(t, "", ViewerFromRequest(req).PracticeID)
}

func TestHandleDashboard(t *testing.T) {
	api := newServiceHandlers(cockpit.NewService(cockpit.Options{}))
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, viewerRequest(http.MethodGet, "/", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Order       []string       `json:"order"`
		Units       []cockpit.Unit `json:"units"`
		ColumnSpans map[string]int `json:"column_spans"`
		Widgets     map[string]any `json:"widgets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, cockpit.DefaultOrder(), payload.Order)
	assert.NotEmpty(t, payload.Units)
	assert.Equal(t, cockpit.FullWidthSpan, payload.ColumnSpans["showBulletin"])
	assert.Equal(t, true, payload.Widgets["showGoals"])
}

func TestPreferencesLifecycle(t *testing.T) {
	router := newServiceHandlers(cockpit.NewService(cockpit.Options{})).Routes()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, viewerRequest(http.MethodPut, "/preferences", `{"widgets":{"showGoals":false,"columnSpans":{"showKPIs":2}}}`))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, viewerRequest(http.MethodGet, "/preferences", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	decoded := cockpit.DecodeConfig(rec.Body.Bytes())
	assert.Equal(t, cockpit.ShapeWrapped, decoded.Shape)
	assert.False(t, decoded.Widgets.Enabled("showGoals"))
	assert.Equal(t, 2, decoded.Widgets.ColumnSpans["showKPIs"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, viewerRequest(http.MethodDelete, "/preferences", ""))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, viewerRequest(http.MethodGet, "/preferences", ""))
	assert.True(t, cockpit.DecodeConfig(rec.Body.Bytes()).Widgets.Enabled("showGoals"))
}

func TestSavePreferencesErrors(t *testing.T) {
	router := newServiceHandlers(cockpit.NewService(cockpit.Options{})).Routes()
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{name: "unrecognized", body: `{"theme":"dark"}`, status: http.StatusBadRequest},
		{name: "invalid span", body: `{"showGoals":true,"columnSpans":{"showGoals":9}}`, status: http.StatusBadRequest},
		{name: "not json", body: `{{`, status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, viewerRequest(http.MethodPut, "/preferences", tc.body))
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rec.Code, rec.Body.String())
			}
		})
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/preferences", strings.NewReader(`{"showGoals":true}`))
	req.Header.Set("X-Practice-ID", "p1")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCardSettingRoutes(t *testing.T) {
	svc := cockpit.NewService(cockpit.Options{Authorizer: cockpit.RoleAuthorizer{Roles: []string{"admin"}}})
	router := newServiceHandlers(svc).Routes()

	req := viewerRequest(http.MethodPut, "/card-settings/showGoals", `{"column_span":3,"min_height":"200px"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = viewerRequest(http.MethodPut, "/card-settings/showGoals", `{"column_span":3,"min_height":"200px"}`)
	req.Header.Set("X-User-Roles", "admin")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, viewerRequest(http.MethodGet, "/card-settings", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Settings cockpit.CardSettings `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Settings, 1)
	assert.Equal(t, "showGoals", listed.Settings[0].WidgetID)
	assert.Equal(t, 3, listed.Settings[0].ColumnSpan)

	req = viewerRequest(http.MethodPut, "/card-settings/showNope", `{}`)
	req.Header.Set("X-User-Roles", "admin")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = viewerRequest(http.MethodDelete, "/card-settings/showGoals", "")
	req.Header.Set("X-User-Roles", "admin")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleDeleteCardSettingPropagatesWidgetID(t *testing.T) {
	remove := &stubCommander[commands.DeleteCardSettingInput]{}
	api := &Handlers{DeleteCardSetting: remove}
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, viewerRequest(http.MethodDelete, "/card-settings/showKPIs", ""))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.WidgetID != "showKPIs" || remove.last.Viewer.PracticeID != "p1" {
		t.Fatalf("expected widget id and viewer propagation, got %+v", remove.last)
	}
}

func TestHandleSaveCardSettingRejectsBadJSON(t *testing.T) {
	save := &stubCommander[commands.SaveCardSettingInput]{}
	api := &Handlers{SaveCardSetting: save}
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, viewerRequest(http.MethodPut, "/card-settings/showKPIs", "nope"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, save.calls)
}

func TestCustomViewerExtractor(t *testing.T) {
	reset := &stubCommander[commands.ResetPreferencesInput]{}
	api := &Handlers{
		ResetPreferences: reset,
		Viewer: func(*http.Request) cockpit.ViewerContext {
			return cockpit.ViewerContext{PracticeID: "session-practice", UserID: "session-user"}
		},
	}
	rec := httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/preferences", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "session-user", reset.last.Viewer.UserID)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, StatusForError(cockpit.ErrForbidden))
	assert.Equal(t, http.StatusUnauthorized, StatusForError(cockpit.ErrViewerRequired))
	assert.Equal(t, http.StatusBadRequest, StatusForError(fmt.Errorf("wrap: %w", cockpit.ErrUnknownWidget)))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(errors.New("db down")))
}

func TestEventsRouteIsOptional(t *testing.T) {
	rec := httptest.NewRecorder()
	(&Handlers{}).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	called := false
	api := &Handlers{Events: func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}}
	rec = httptest.NewRecorder()
	api.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.True(t, called)
}
