package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.Mutations.WithLabelValues("append", ResultOK).Inc()
	m.Mutations.WithLabelValues("append", ResultOK).Inc()
	m.Responses.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Mutations.WithLabelValues("append", ResultOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Responses))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "surveyeditor_editor_mutations_total")
	assert.Contains(t, string(body), "surveyeditor_responses_total 1")
}

func TestMetrics_ParseFallbacksDescribesEditorSessions(t *testing.T) {
	m := New()
	m.ParseFallbacks.Inc()

	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	var help string
	for _, mf := range families {
		if mf.GetName() == "surveyeditor_editor_parse_fallbacks_total" {
			help = mf.GetHelp()
		}
	}
	assert.Contains(t, help, "Editing sessions")
}
