package cockpit

import (
	"context"
	"strings"
)

// DefaultLocale is the locale the built-in copy is written in.
const DefaultLocale = "de"

// TranslationService translates cockpit copy. Keys are the German source
// strings, so a missing translation can always fall back to the key.
type TranslationService interface {
	Translate(ctx context.Context, key, locale string, args map[string]any) (string, error)
}

// ResolveLocalizedValue selects the best translation for locale. Keys match
// case-insensitively and region locales (`de-at`) fall back to their language.
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.TrimSpace(strings.ToLower(locale))
}

// translatorFor adapts a TranslationService to the renderer's TranslateFunc.
// Without a service, or for the source locale, the fallback is used verbatim.
func translatorFor(ctx context.Context, svc TranslationService, locale string) TranslateFunc {
	return func(key, fallback string) string {
		return translateOrFallback(ctx, svc, key, locale, fallback)
	}
}

func translateOrFallback(ctx context.Context, svc TranslationService, key, locale, fallback string) string {
	if svc != nil && locale != "" {
		if translated, err := svc.Translate(ctx, key, locale, nil); err == nil && translated != "" {
			return translated
		}
	}
	if fallback != "" {
		return fallback
	}
	return key
}

// CatalogTranslations serves the English labels from the widget catalog. It
// is the translator used when nothing else is configured.
type CatalogTranslations struct{}

// Translate implements TranslationService.
func (CatalogTranslations) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	// stat card titles differ slightly from catalog labels
	if en, ok := statCardEnglish[key]; ok && strings.HasPrefix(normalizeLocale(locale), "en") {
		return en, nil
	}
	for _, def := range widgetCatalog {
		if def.Label == key {
			return def.LabelForLocale(locale), nil
		}
	}
	return "", nil
}

var statCardEnglish = map[string]string{
	"Team-Mitglieder":     "Team members",
	"Aktive Ziele":        "Active goals",
	"Dokumente":           "Documents",
	"Offene Stellen":      "Open positions",
	"Offene Aufgaben":     "Open tasks",
	"Termine heute":       "Appointments today",
	"Aktive Kandidaten":   "Active candidates",
	"Entwürfe":            "Drafts",
	"Gefilterte Aufgaben": "Filtered tasks",
}
