package mapbox

import (
	"context"
	"errors"
	"testing"

	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingGeocoder struct {
	calls int
	place domain.Place
	err   error
}

func (m *countingGeocoder) ForwardGeocode(_ context.Context, _ string) (domain.Place, error) {
	m.calls++
	return m.place, m.err
}

// --- CachedGeocoder tests ---

func TestCachedGeocoder_CacheHit(t *testing.T) {
	inner := &countingGeocoder{
		place: domain.Place{Lat: 30.27, Lon: -97.74, Postcode: "78701", FormattedAddress: "Austin, Texas 78701"},
	}
	metrics := testMetrics()
	cached := NewCachedGeocoder(inner, 10, metrics)

	p1, err := cached.ForwardGeocode(context.Background(), "625 E 10th St, Austin TX")
	require.NoError(t, err)
	assert.Equal(t, "78701", p1.Postcode)

	p2, err := cached.ForwardGeocode(context.Background(), "625  e 10TH st,   austin tx")
	require.NoError(t, err)
	assert.Equal(t, p1, p2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.GeocodeCache.WithLabelValues("miss")))
}

func TestCachedGeocoder_DifferentKeysMiss(t *testing.T) {
	inner := &countingGeocoder{place: domain.Place{FormattedAddress: "Somewhere, TX"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Austin TX")
	_, _ = cached.ForwardGeocode(context.Background(), "Dallas TX")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")
	_, _ = cached.ForwardGeocode(context.Background(), "Nowhere")

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorNotCached(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("timeout")}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	_, err := cached.ForwardGeocode(context.Background(), "Austin TX")
	require.Error(t, err)
	_, err = cached.ForwardGeocode(context.Background(), "Austin TX")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_SatisfiesLocateTerritory(t *testing.T) {
	inner := &countingGeocoder{place: domain.Place{Postcode: "78702", FormattedAddress: "Austin, Texas 78702"}}
	cached := NewCachedGeocoder(inner, 10, testMetrics())

	territory, err := domain.LocateTerritory(context.Background(), cached,
		[]string{"Austin TX, 78701", "Austin TX, 78702"}, "1100 E 5th St, Austin TX")
	require.NoError(t, err)
	assert.Equal(t, "Austin TX, 78702", territory)
}
