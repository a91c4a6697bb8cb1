package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Shape(t *testing.T) {
	byName := make(map[string]Model)
	for _, m := range Registry() {
		byName[m.Name] = m
	}
	require.Len(t, byName, 5)

	staging := byName["stg_telegram_messages"]
	assert.Equal(t, "staging", staging.Schema)
	assert.Equal(t, View, staging.Materialization)
	assert.Empty(t, staging.Refs, "staging reads only the raw zone")

	for _, name := range []string{"dim_channels", "dim_dates", "fct_messages", "fct_image_detections"} {
		m, ok := byName[name]
		require.True(t, ok, "missing model %s", name)
		assert.Equal(t, "marts", m.Schema)
		assert.Equal(t, Table, m.Materialization)
		assert.NotEmpty(t, m.Refs)
	}
}

func TestRegistry_StagingFilter(t *testing.T) {
	var staging Model
	for _, m := range Registry() {
		if m.Name == "stg_telegram_messages" {
			staging = m
		}
	}

	// Rows with neither text nor media must be dropped; everything else kept.
	assert.Contains(t, staging.SQL, "COALESCE(message, '') <> '' OR COALESCE(media, FALSE) IS TRUE")
	for _, flag := range []string{"has_url", "has_hashtag", "has_mention"} {
		assert.Contains(t, staging.SQL, flag)
	}
	assert.Contains(t, staging.SQL, "ILIKE '%http%'")
}

func TestRegistry_SurrogateKeyOrdering(t *testing.T) {
	for _, m := range Registry() {
		switch m.Name {
		case "dim_channels":
			// Alphabetical channel order drives key assignment.
			assert.Contains(t, m.SQL, "ROW_NUMBER() OVER (ORDER BY channel, chat_id)")
		case "dim_dates":
			assert.Contains(t, m.SQL, "generate_series")
			assert.Contains(t, m.SQL, "ROW_NUMBER() OVER (ORDER BY date_day)")
		}
	}
}

func TestRegistry_FactsUseLeftJoins(t *testing.T) {
	for _, m := range Registry() {
		if !strings.HasPrefix(m.Name, "fct_") {
			continue
		}
		assert.Contains(t, m.SQL, "LEFT JOIN", "%s must not enforce referential integrity", m.Name)
		assert.NotContains(t, m.SQL, "INNER JOIN")
	}
}

func TestChecks_CoverSpecProperties(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range Checks() {
		require.NotEmpty(t, c.SQL)
		names[c.Name] = true
	}

	for _, expected := range []string{
		"staged_messages_have_content",
		"dim_channels_no_duplicates",
		"fct_messages_unique_message_id",
		"dim_dates_no_gaps",
	} {
		assert.True(t, names[expected], "missing check %s", expected)
	}
}
