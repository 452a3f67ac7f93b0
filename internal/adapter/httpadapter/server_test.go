package httpadapter_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/couchcryptid/tapwater-report-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/tapwater-report-service/internal/adapter/memory"
	"github.com/couchcryptid/tapwater-report-service/internal/domain"
	"github.com/couchcryptid/tapwater-report-service/internal/observability"
	"github.com/couchcryptid/tapwater-report-service/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubGeocoder always resolves to the same postcode.
type stubGeocoder struct {
	postcode string
}

func (g stubGeocoder) ForwardGeocode(_ context.Context, address string) (domain.Place, error) {
	return domain.Place{Postcode: g.postcode, FormattedAddress: address}, nil
}

func fixtureService(t *testing.T, geocoder domain.Geocoder) *report.Service {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	store, err := memory.Load(filepath.Join(filepath.Dir(file), "..", "..", "..", "data", "fixtures", "reports.json"))
	require.NoError(t, err)
	return report.NewService(store, geocoder, observability.NewMetricsForTesting(), discardLogger())
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	return httpadapter.NewServer(":0", fixtureService(t, nil), &mockReadiness{err: readyErr}, 3, discardLogger())
}

func get(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

// --- health, readiness, metrics ---

func TestHealthzReturns200(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[map[string]string](t, rec)["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(t, newTestServer(t, fmt.Errorf("store has no territories")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "store has no territories", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

// --- report API ---

func TestTerritories(t *testing.T) {
	rec := get(t, newTestServer(t, nil), "/api/v1/territories")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode[map[string][]string](t, rec)
	assert.Len(t, body["territories"], 5)
	assert.Contains(t, body["territories"], "Round Rock TX, 78665")
}

type reportBody struct {
	Territory string `json:"territory"`
	Year      int    `json:"year"`
	Top       []struct {
		Contaminant struct {
			Name string `json:"name"`
		} `json:"contaminant"`
		Factor json.RawMessage `json:"factor"`
	} `json:"top"`
	More        []json.RawMessage          `json:"more"`
	Secondary   map[string]json.RawMessage `json:"secondary"`
	Aesthetics  []json.RawMessage          `json:"aesthetics"`
	Diagnostics struct {
		Skipped []struct {
			Contaminant string `json:"contaminant"`
			Reason      string `json:"reason"`
		} `json:"skipped"`
	} `json:"diagnostics"`
}

func TestReport_ByTerritory(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := get(t, srv, "/api/v1/reports?territory="+url.QueryEscape("Austin TX, 78704"))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[reportBody](t, rec)

	assert.Equal(t, "Austin TX, 78704", body.Territory)
	assert.Equal(t, 2022, body.Year)
	require.Len(t, body.Top, 3, "default top")
	assert.Len(t, body.More, 6)
	assert.Equal(t, "Lead", body.Top[0].Contaminant.Name)
	assert.JSONEq(t, `"Infinity"`, string(body.Top[0].Factor))
	assert.Len(t, body.Secondary, 4)
	assert.Len(t, body.Aesthetics, 3)
	assert.Len(t, body.Diagnostics.Skipped, 2)
}

func TestReport_TopParameter(t *testing.T) {
	srv := newTestServer(t, nil)
	base := "/api/v1/reports?territory=" + url.QueryEscape("Round Rock TX, 78664")

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantTop  int
		wantMore int
	}{
		{name: "explicit", query: "&top=1", wantCode: http.StatusOK, wantTop: 1, wantMore: 2},
		{name: "zero", query: "&top=0", wantCode: http.StatusOK, wantTop: 0, wantMore: 3},
		{name: "beyond length", query: "&top=50", wantCode: http.StatusOK, wantTop: 3, wantMore: 0},
		{name: "negative", query: "&top=-1", wantCode: http.StatusBadRequest},
		{name: "not a number", query: "&top=ten", wantCode: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, base+tt.query)
			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			body := decode[reportBody](t, rec)
			assert.Len(t, body.Top, tt.wantTop)
			assert.Len(t, body.More, tt.wantMore)
			assert.NotNil(t, body.Top)
			assert.NotNil(t, body.More)
		})
	}
}

func TestReport_Errors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name     string
		target   string
		wantCode int
	}{
		{name: "no territory", target: "/api/v1/reports", wantCode: http.StatusBadRequest},
		{name: "blank territory", target: "/api/v1/reports?territory=%20", wantCode: http.StatusBadRequest},
		{name: "unknown territory", target: "/api/v1/reports?territory=Nowhere", wantCode: http.StatusNotFound},
		{name: "address without geocoder", target: "/api/v1/reports?address=Austin", wantCode: http.StatusNotImplemented},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, srv, tt.target)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
		})
	}
}

func TestReport_ByAddress(t *testing.T) {
	svc := fixtureService(t, stubGeocoder{postcode: "78702"})
	srv := httpadapter.NewServer(":0", svc, &mockReadiness{}, 5, discardLogger())

	rec := get(t, srv, "/api/v1/reports?address="+url.QueryEscape("1100 E 5th St, Austin TX"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Austin TX, 78702", decode[reportBody](t, rec).Territory)

	miss := httpadapter.NewServer(":0", fixtureService(t, stubGeocoder{postcode: "10001"}), &mockReadiness{}, 5, discardLogger())
	rec = get(t, miss, "/api/v1/reports?address="+url.QueryEscape("350 5th Ave, New York"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContaminant(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(t, srv, "/api/v1/contaminants/"+url.PathEscape("Perfluorooctane sulfonate"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Contaminant struct {
			Name string `json:"name"`
		} `json:"contaminant"`
		UnitName        string `json:"unit_name"`
		ForeverChemical bool   `json:"forever_chemical"`
		Filters         []struct {
			Method      string `json:"method"`
			Recommended bool   `json:"recommended"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PFOS", body.Contaminant.Name)
	assert.Equal(t, "parts per trillion (ppt)", body.UnitName)
	assert.True(t, body.ForeverChemical)
	require.Len(t, body.Filters, 3)
	assert.Equal(t, "Reverse Osmosis filtration", body.Filters[0].Method)

	rec = get(t, srv, "/api/v1/contaminants/Unobtainium")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// failingService reports a store outage on every call.
type failingService struct{}

var errOutage = errors.New("connection refused")

func (failingService) Territories(context.Context) ([]string, error) { return nil, errOutage }
func (failingService) Generate(context.Context, string) (domain.Report, error) {
	return domain.Report{}, errOutage
}
func (failingService) LocateTerritory(context.Context, string) (string, error) { return "", errOutage }
func (failingService) Contaminant(context.Context, string) (domain.Contaminant, error) {
	return domain.Contaminant{}, errOutage
}

// unencodableService returns a report holding a level JSON cannot represent.
type unencodableService struct{ failingService }

func (unencodableService) Generate(context.Context, string) (domain.Report, error) {
	level := math.Inf(-1)
	return domain.Report{
		Territory: "Austin TX, 78704",
		Ranking:   domain.Ranking{Findings: []domain.PrimaryFinding{{Max: &level}}},
	}, nil
}

func TestReport_EncodeFailureReturns500(t *testing.T) {
	srv := httpadapter.NewServer(":0", unencodableService{}, &mockReadiness{}, 5, discardLogger())

	rec := get(t, srv, "/api/v1/reports?territory=Austin")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "failed to encode response", decode[map[string]string](t, rec)["error"])
}

func TestInternalErrorsReturn500(t *testing.T) {
	srv := httpadapter.NewServer(":0", failingService{}, &mockReadiness{}, 5, discardLogger())

	for _, target := range []string{
		"/api/v1/territories",
		"/api/v1/reports?territory=Austin",
		"/api/v1/reports?address=Austin",
		"/api/v1/contaminants/Lead",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, srv, target)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, "connection refused", decode[map[string]string](t, rec)["error"])
		})
	}
}
