package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New("schedulebooker")

	m.IncBookingCreated("public")
	m.IncBookingCreated("public")
	m.IncBookingCreated("admin")
	m.IncBookingRejected("conflict")
	m.IncCancellation("success")
	m.IncSlotComputation()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("public")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsCreated.WithLabelValues("admin")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsRejected.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.slotComputations))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBookingCreated("public")
		m.IncBookingRejected("quota")
		m.IncCancellation("denied")
		m.IncSlotComputation()
		m.ObserveDBQuery("query", time.Millisecond)
		m.SetDBPoolStats(1, 1)
	})
	assert.Nil(t, m.Registry())
}

func TestMetrics_Handler(t *testing.T) {
	m := New("schedulebooker")
	m.IncBookingCreated("public")
	m.SetDBPoolStats(4, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `bookings_created_total{path="public",service="schedulebooker"} 1`)
	assert.Contains(t, rec.Body.String(), "db_open_connections")
}
