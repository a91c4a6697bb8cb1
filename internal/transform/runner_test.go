package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_Registry(t *testing.T) {
	ordered, err := Order(Registry())
	require.NoError(t, err)
	require.Len(t, ordered, 5)

	pos := make(map[string]int)
	for i, m := range ordered {
		pos[m.Name] = i
	}

	assert.Equal(t, 0, pos["stg_telegram_messages"], "staging must build first")
	assert.Less(t, pos["stg_telegram_messages"], pos["dim_channels"])
	assert.Less(t, pos["stg_telegram_messages"], pos["dim_dates"])
	assert.Less(t, pos["dim_channels"], pos["fct_messages"])
	assert.Less(t, pos["dim_dates"], pos["fct_messages"])
	assert.Less(t, pos["fct_messages"], pos["fct_image_detections"])
}

func TestOrder_Deterministic(t *testing.T) {
	first, err := Order(Registry())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Order(Registry())
		require.NoError(t, err)
		for j := range first {
			assert.Equal(t, first[j].Name, again[j].Name)
		}
	}
}

func TestOrder_UnknownRef(t *testing.T) {
	models := []Model{
		{Name: "a", Schema: "staging", Materialization: View, Refs: []string{"missing"}},
	}
	_, err := Order(models)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestOrder_Cycle(t *testing.T) {
	models := []Model{
		{Name: "a", Schema: "marts", Materialization: Table, Refs: []string{"b"}},
		{Name: "b", Schema: "marts", Materialization: Table, Refs: []string{"a"}},
	}
	_, err := Order(models)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestOrder_DuplicateName(t *testing.T) {
	models := []Model{
		{Name: "a", Schema: "marts", Materialization: Table},
		{Name: "a", Schema: "staging", Materialization: View},
	}
	_, err := Order(models)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestModel_Relation(t *testing.T) {
	m := Model{Name: "dim_channels", Schema: "marts"}
	assert.Equal(t, "marts.dim_channels", m.Relation())
}
