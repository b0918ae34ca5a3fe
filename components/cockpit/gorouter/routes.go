package gorouter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-cockpit/components/cockpit"
	"github.com/goliatone/go-cockpit/components/cockpit/commands"
	"github.com/goliatone/go-cockpit/components/cockpit/httpapi"
	"github.com/goliatone/go-cockpit/components/cockpit/queries"
)

// ViewerResolver converts a router.Context into a cockpit.ViewerContext.
type ViewerResolver func(router.Context) cockpit.ViewerContext

// Config wires go-router with the cockpit controller, shared commands and the
// refresh broadcast.
type Config[T any] struct {
	Router     router.Router[T]
	Controller *cockpit.Controller
	// API provides the commands and queries behind the JSON endpoints. Only
	// the command and query fields are used.
	API            *httpapi.Handlers
	Broadcast      *cockpit.BroadcastHook
	ViewerResolver ViewerResolver
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for cockpit endpoints.
type RouteConfig struct {
	HTML         string
	Layout       string
	Edit         string
	Preferences  string
	CardSettings string
	CardSetting  string
	WebSocket    string
}

// Register mounts cockpit routes (HTML, JSON, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/app"
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = defaultViewerResolver
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), resolver(ctx), &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.LayoutPayload(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	group.Get(routes.Edit, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.EditPayload(ctx.Context(), resolver(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, resolver, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, resolver, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api *httpapi.Handlers, resolver ViewerResolver, routes RouteConfig) {
	if api.SavePreferences != nil {
		r.Post(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
			input := commands.SavePreferencesInput{Viewer: resolver(ctx), Config: json.RawMessage(ctx.Body())}
			if err := api.SavePreferences.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
		}))
	}

	if api.ResetPreferences != nil {
		r.Delete(routes.Preferences, router.WrapHandler(func(ctx router.Context) error {
			if err := api.ResetPreferences.Execute(ctx.Context(), commands.ResetPreferencesInput{Viewer: resolver(ctx)}); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "reset"})
		}))
	}

	if api.CardSettings != nil {
		r.Get(routes.CardSettings, router.WrapHandler(func(ctx router.Context) error {
			input := queries.CardSettingsInput{PracticeID: resolver(ctx).PracticeID}
			settings, err := api.CardSettings.Query(ctx.Context(), input)
			if err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]any{"settings": settings})
		}))
	}

	if api.SaveCardSetting != nil {
		r.Post(routes.CardSetting, router.WrapHandler(func(ctx router.Context) error {
			var setting cockpit.CockpitCardSetting
			if err := json.Unmarshal(ctx.Body(), &setting); err != nil {
				return respondError(ctx, fmt.Errorf("%w: %w", cockpit.ErrInvalidPayload, err))
			}
			setting.WidgetID = ctx.Param("widget")
			input := commands.SaveCardSettingInput{Viewer: resolver(ctx), Setting: setting}
			if err := api.SaveCardSetting.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "saved"})
		}))
	}

	if api.DeleteCardSetting != nil {
		r.Delete(routes.CardSetting, router.WrapHandler(func(ctx router.Context) error {
			input := commands.DeleteCardSettingInput{Viewer: resolver(ctx), WidgetID: ctx.Param("widget")}
			if err := api.DeleteCardSetting.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, err)
			}
			return ctx.JSON(http.StatusOK, map[string]string{"status": "removed"})
		}))
	}
}

// registerWebSocket streams refresh events for the connecting viewer's
// practice. A viewer without a practice receives every event.
func registerWebSocket[T any](r router.Router[T], hook *cockpit.BroadcastHook, resolver ViewerResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.SubscribePractice(resolver(ws).PracticeID)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func defaultViewerResolver(ctx router.Context) cockpit.ViewerContext {
	var viewer cockpit.ViewerContext
	if v, ok := ctx.Locals("practice_id").(string); ok {
		viewer.PracticeID = v
	}
	if viewer.PracticeID == "" {
		viewer.PracticeID = ctx.Query("practice_id")
	}
	viewer.PracticeID = cockpit.SanitizePracticeID(viewer.PracticeID)
	if v, ok := ctx.Locals("user_id").(string); ok {
		viewer.UserID = v
	}
	if roles, ok := ctx.Locals("roles").([]string); ok {
		viewer.Roles = roles
	}
	viewer.Locale = inferLocale(ctx)
	return viewer
}

func inferLocale(ctx router.Context) string {
	if locale, ok := ctx.Locals("locale").(string); ok && locale != "" {
		return locale
	}
	if locale := strings.TrimSpace(ctx.Query("locale")); locale != "" {
		return strings.ToLower(locale)
	}
	return parseAcceptLanguage(ctx.Header("Accept-Language"))
}

func parseAcceptLanguage(header string) string {
	for _, token := range strings.Split(header, ",") {
		token, _, _ = strings.Cut(token, ";")
		if token = strings.TrimSpace(token); token != "" {
			return strings.ToLower(token)
		}
	}
	return ""
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusForError(err), map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/cockpit"
	}
	if routes.Layout == "" {
		routes.Layout = "/cockpit/_layout"
	}
	if routes.Edit == "" {
		routes.Edit = "/cockpit/_edit"
	}
	if routes.Preferences == "" {
		routes.Preferences = "/cockpit/preferences"
	}
	if routes.CardSettings == "" {
		routes.CardSettings = "/cockpit/card-settings"
	}
	if routes.CardSetting == "" {
		routes.CardSetting = "/cockpit/card-settings/:widget"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/cockpit/ws"
	}
	return routes
}
