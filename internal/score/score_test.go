package score

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricJSON(t *testing.T) {
	t.Parallel()

	t.Run("finite value", func(t *testing.T) {
		t.Parallel()
		out, err := json.Marshal(Metric{Name: "accuracy", Value: 0.5})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"accuracy","value":0.5}`, string(out))
	})

	t.Run("NaN serializes as null", func(t *testing.T) {
		t.Parallel()
		out, err := json.Marshal(Metric{Name: "sensitivity", Value: math.NaN()})
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"sensitivity","value":null}`, string(out))
	})

	t.Run("infinity serializes as null", func(t *testing.T) {
		t.Parallel()
		out, err := json.Marshal(Record{
			Dataset: "ISIC_0000001",
			Metrics: []Metric{{Name: "dice", Value: math.Inf(1)}},
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"dataset":"ISIC_0000001","metrics":[{"name":"dice","value":null}]}`, string(out))
	})
}

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := Errorf(KindSchema, "missing column in CSV: %q", "image")
	assert.Equal(t, KindSchema, err.Kind)
	assert.Equal(t, `missing column in CSV: "image"`, err.Error())
}
