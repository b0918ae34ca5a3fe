package cockpit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOrderFollowsCatalog(t *testing.T) {
	order := DefaultOrder()
	require.Len(t, order, len(widgetCatalog))
	assert.Equal(t, "showOpenTasks", order[0])
	assert.Equal(t, "showTimeTracking", order[len(order)-1])

	seen := map[string]bool{}
	for _, id := range order {
		if seen[id] {
			t.Fatalf("duplicate id %s in default order", id)
		}
		seen[id] = true
	}
}

func TestDefaultOrderReturnsCopy(t *testing.T) {
	order := DefaultOrder()
	order[0] = "mutated"
	assert.Equal(t, "showOpenTasks", DefaultOrder()[0])
}

func TestDefaultWidgetFlags(t *testing.T) {
	cfg := DefaultWidgetConfig()
	for _, id := range []string{"showTeamMembers", "showDocuments", "showRecruiting", "showDrafts"} {
		assert.False(t, cfg.Enabled(id), id)
	}
	for _, id := range []string{"showGoals", "showBulletin", "showTimeTracking", "showQuickActions"} {
		assert.True(t, cfg.Enabled(id), id)
	}
	assert.Equal(t, DefaultOrder(), cfg.WidgetOrder)
}

func TestLinebreakIDs(t *testing.T) {
	id := NewLinebreakID()
	assert.True(t, strings.HasPrefix(id, LinebreakPrefix))
	assert.True(t, IsLinebreak(id))
	assert.NotEqual(t, id, NewLinebreakID())
	assert.False(t, IsLinebreak("showGoals"))
	assert.False(t, IsKnownWidget(id))
}

func TestDefinitionLookup(t *testing.T) {
	def, ok := Definition("showKPIs")
	require.True(t, ok)
	assert.Equal(t, "Praxis-Score", def.Label)
	assert.Equal(t, "Practice score", def.LabelForLocale("en-GB"))
	assert.Equal(t, "Praxis-Score", def.LabelForLocale("fr"))

	_, ok = Definition("showNothing")
	assert.False(t, ok)
}

func TestFullWidthAndRowSpanTables(t *testing.T) {
	assert.True(t, IsFullWidth("showBulletin"))
	assert.True(t, IsFullWidth("showJournalActions"))
	assert.False(t, IsFullWidth("showGoals"))
	assert.Equal(t, 2, DefaultRowSpan("showActivityChart"))
	assert.Equal(t, 0, DefaultRowSpan("showGoals"))
}
