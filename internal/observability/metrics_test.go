package observability

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	done := m.RequestStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.httpInFlight))

	m.RecordRequest(http.MethodPost, "/subscriptions", http.StatusOK, 12*time.Millisecond)
	m.RecordRequest(http.MethodPost, "/subscriptions", http.StatusInternalServerError, 3*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/subscriptions", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/subscriptions", "500")))

	m.RecordSubscription(OutcomeCreated)
	m.RecordSubscription(OutcomeCreated)
	m.RecordSubscription(OutcomeFailed)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.subscriptions.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.subscriptions.WithLabelValues(OutcomeFailed)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "newsletter_subscriptions_total")
	assert.Contains(t, rec.Body.String(), "newsletter_http_requests_total")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RequestStarted()()
		m.RecordRequest(http.MethodGet, "/health_check", http.StatusOK, time.Millisecond)
		m.RecordSubscription(OutcomeFailed)
		m.RegisterDBStats(nil, "newsletter")
	})
}

func TestMetrics_RegisterDBStats(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(7)

	m := NewMetrics()
	m.RegisterDBStats(db, "newsletter")

	expected := `
# HELP go_sql_max_open_connections Maximum number of open connections to the database.
# TYPE go_sql_max_open_connections gauge
go_sql_max_open_connections{db_name="newsletter"} 7
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "go_sql_max_open_connections"))

	var nilDB *sql.DB
	assert.NotPanics(t, func() { m.RegisterDBStats(nilDB, "other") })
}
