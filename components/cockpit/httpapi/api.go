package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gocommand "github.com/goliatone/go-command"
	"go.uber.org/zap"

	"github.com/goliatone/go-cockpit/components/cockpit"
	"github.com/goliatone/go-cockpit/components/cockpit/commands"
	"github.com/goliatone/go-cockpit/components/cockpit/queries"
)

const maxBodyBytes = 1 << 20

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Dashboard         gocommand.Querier[cockpit.ViewerContext, cockpit.Composition]
	Preferences       gocommand.Querier[cockpit.ViewerContext, cockpit.WidgetConfig]
	CardSettings      gocommand.Querier[queries.CardSettingsInput, cockpit.CardSettings]
	SavePreferences   gocommand.Commander[commands.SavePreferencesInput]
	ResetPreferences  gocommand.Commander[commands.ResetPreferencesInput]
	SaveCardSetting   gocommand.Commander[commands.SaveCardSettingInput]
	DeleteCardSetting gocommand.Commander[commands.DeleteCardSettingInput]

	// Events streams refresh notifications when set.
	Events http.HandlerFunc
	// Viewer extracts the viewer; ViewerFromRequest is used when nil.
	Viewer func(*http.Request) cockpit.ViewerContext
	Logger *zap.Logger
}

// Routes mounts every configured endpoint on a chi router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(h.requestLogger)

	r.Get("/", h.HandleDashboard)
	r.Get("/preferences", h.HandlePreferences)
	r.Put("/preferences", h.HandleSavePreferences)
	r.Delete("/preferences", h.HandleResetPreferences)
	r.Get("/card-settings", h.HandleCardSettings)
	r.Put("/card-settings/{widgetId}", h.HandleSaveCardSetting)
	r.Delete("/card-settings/{widgetId}", h.HandleDeleteCardSetting)
	if h.Events != nil {
		r.Get("/events", h.Events)
	}
	return r
}

// ViewerFromRequest reads the viewer from X-Practice-ID, X-User-ID and
// X-User-Roles headers. The practice may also come from the practice_id query.
func ViewerFromRequest(r *http.Request) cockpit.ViewerContext {
	practiceID := r.Header.Get("X-Practice-ID")
	if practiceID == "" {
		practiceID = r.URL.Query().Get("practice_id")
	}
	viewer := cockpit.ViewerContext{
		PracticeID: cockpit.SanitizePracticeID(practiceID),
		UserID:     strings.TrimSpace(r.Header.Get("X-User-ID")),
		Locale:     primaryLocale(r.Header.Get("Accept-Language")),
	}
	for _, role := range strings.Split(r.Header.Get("X-User-Roles"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			viewer.Roles = append(viewer.Roles, role)
		}
	}
	return viewer
}

func primaryLocale(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(first, ";")
	return strings.TrimSpace(first)
}

func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	composition, err := h.Dashboard.Query(r.Context(), h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	spans := make(map[string]int, len(composition.Order))
	for _, id := range composition.Order {
		spans[id] = composition.ColumnSpanForEdit(id)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order":        composition.Order,
		"units":        composition.Units,
		"column_spans": spans,
		"widgets":      composition.Widgets,
	})
}

func (h *Handlers) HandlePreferences(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Preferences.Query(r.Context(), h.viewer(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cockpit.DashboardConfig{Widgets: &cfg})
}

func (h *Handlers) HandleSavePreferences(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SavePreferencesInput{Viewer: h.viewer(r), Config: body}
	if err := h.SavePreferences.Execute(r.Context(), input); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleResetPreferences(w http.ResponseWriter, r *http.Request) {
	if err := h.ResetPreferences.Execute(r.Context(), commands.ResetPreferencesInput{Viewer: h.viewer(r)}); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleCardSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.CardSettings.Query(r.Context(), queries.CardSettingsInput{PracticeID: h.viewer(r).PracticeID})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

func (h *Handlers) HandleSaveCardSetting(w http.ResponseWriter, r *http.Request) {
	var setting cockpit.CockpitCardSetting
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&setting); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	setting.WidgetID = chi.URLParam(r, "widgetId")
	input := commands.SaveCardSettingInput{Viewer: h.viewer(r), Setting: setting}
	if err := h.SaveCardSetting.Execute(r.Context(), input); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleDeleteCardSetting(w http.ResponseWriter, r *http.Request) {
	input := commands.DeleteCardSettingInput{Viewer: h.viewer(r), WidgetID: chi.URLParam(r, "widgetId")}
	if err := h.DeleteCardSetting.Execute(r.Context(), input); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) viewer(r *http.Request) cockpit.ViewerContext {
	if h.Viewer != nil {
		return h.Viewer(r)
	}
	return ViewerFromRequest(r)
}

func (h *Handlers) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handlers) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger().Debug("cockpit request",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger().Error("cockpit request failed",
			zap.String("request_id", chimiddleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	http.Error(w, err.Error(), status)
}

// StatusForError maps cockpit sentinels to HTTP status codes.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, cockpit.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, cockpit.ErrViewerRequired):
		return http.StatusUnauthorized
	case errors.Is(err, cockpit.ErrPracticeRequired),
		errors.Is(err, cockpit.ErrWidgetIDRequired),
		errors.Is(err, cockpit.ErrUnknownWidget),
		errors.Is(err, cockpit.ErrUnrecognizedConfig),
		errors.Is(err, cockpit.ErrInvalidPayload):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
