package cockpit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type mapTranslator map[string]string

func (m mapTranslator) Translate(_ context.Context, key, locale string, _ map[string]any) (string, error) {
	if value, ok := m[locale+":"+key]; ok {
		return value, nil
	}
	return "", errors.New("missing translation")
}

func TestResolveLocalizedValue(t *testing.T) {
	values := map[string]string{"en": "Goals", "DE-AT": "Ziele (AT)", "default": "Ziele"}
	assert.Equal(t, "Goals", ResolveLocalizedValue(values, "en-US", "x"))
	assert.Equal(t, "Ziele (AT)", ResolveLocalizedValue(values, "de-at", "x"))
	assert.Equal(t, "Ziele", ResolveLocalizedValue(values, "fr", "x"))
	assert.Equal(t, "x", ResolveLocalizedValue(nil, "en", "x"))
}

func TestLocaleCandidates(t *testing.T) {
	assert.Equal(t, []string{"en_gb", "en", "default"}, localeCandidates(" EN_GB "))
	assert.Equal(t, []string{"default"}, localeCandidates(""))
}

func TestTranslatorForFallsBack(t *testing.T) {
	svc := mapTranslator{"en:Aktive Ziele": "Active goals"}
	translate := translatorFor(context.Background(), svc, "en")
	assert.Equal(t, "Active goals", translate("Aktive Ziele", "Aktive Ziele"))
	assert.Equal(t, "Dokumente", translate("Dokumente", "Dokumente"))
	assert.Equal(t, "key", translate("key", ""))

	noLocale := translatorFor(context.Background(), svc, "")
	assert.Equal(t, "Aktive Ziele", noLocale("Aktive Ziele", "Aktive Ziele"))
}

func TestCatalogTranslations(t *testing.T) {
	ctx := context.Background()
	tr := CatalogTranslations{}

	got, err := tr.Translate(ctx, "Offene Stellen", "en", nil)
	assert.NoError(t, err)
	assert.Equal(t, "Open positions", got)

	got, _ = tr.Translate(ctx, "Schwarzes Brett", "en-GB", nil)
	assert.Equal(t, "Bulletin board", got)

	got, _ = tr.Translate(ctx, "Offene Stellen", "de", nil)
	assert.Empty(t, got)

	got, _ = tr.Translate(ctx, "Unbekannt", "en", nil)
	assert.Empty(t, got)
}
