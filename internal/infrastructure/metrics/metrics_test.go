package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_ObserveBooking(t *testing.T) {
	c := NewCollector("clinic")

	c.ObserveBooking(BookingBooked)
	c.ObserveBooking(BookingBooked)
	c.ObserveBooking(BookingConflict)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.BookingsTotal.WithLabelValues(BookingBooked)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BookingsTotal.WithLabelValues(BookingConflict)))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.ObserveBooking(BookingBooked)
		c.ObserveAppointment("completed")
		c.ObservePrescription()
		c.ObserveNotification("sent")
		c.ObserveNotificationDropped()
	})
}

func TestCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewCollector("clinic")
		NewCollector("clinic")
	})
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("clinic")
	c.ObservePrescription()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), "clinic_clinical_prescriptions_issued_total 1")
}
