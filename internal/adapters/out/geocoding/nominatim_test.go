package geocoding

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimGeocoder_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "1 Short St, Newtown 2042", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[{"lat":"-33.896","lon":"151.179"}]`))
	}))
	defer server.Close()

	geocoder, err := NewNominatimGeocoder(server.URL, server.Client())
	require.NoError(t, err)

	location, err := geocoder.Resolve(t.Context(), "1 Short St, Newtown 2042")
	require.NoError(t, err)

	assert.InDelta(t, -33.896, location.Latitude(), 1e-9)
	assert.InDelta(t, 151.179, location.Longitude(), 1e-9)
	assert.Equal(t, "1 Short St, Newtown 2042", location.Address())
}

func TestNominatimGeocoder_Resolve_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	geocoder, err := NewNominatimGeocoder(server.URL, server.Client())
	require.NoError(t, err)

	_, err = geocoder.Resolve(t.Context(), "??? nowhere")
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestNominatimGeocoder_Resolve_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	geocoder, err := NewNominatimGeocoder(server.URL, server.Client())
	require.NoError(t, err)

	_, err = geocoder.Resolve(t.Context(), "1 Short St, Newtown 2042")
	require.Error(t, err)
}
