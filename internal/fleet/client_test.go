package fleet

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
)

func TestGetVehicleStatusFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/vehicles/42/status", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"vehicle_number":42,"status":"online","driver_name":"Juan Pérez"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "token-1", 0)

	status, err := client.GetVehicleStatus(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, 42, status.VehicleNumber)
	assert.True(t, status.Online())
}

func TestGetVehicleStatusNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	status, err := client.GetVehicleStatus(context.Background(), 42)
	require.NoError(t, err, "a miss is not an error")
	assert.Nil(t, status)
}

func TestGetVehicleStatusNullBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `null`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	status, err := client.GetVehicleStatus(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestBackendErrorMapsToAdapterFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	_, err := client.GetVehicleStatus(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fderrors.ErrAdapterFailure))
}

func TestGetBookingInfoSharedFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bookings/900123", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("shared"))
		_, _ = io.WriteString(w, `[{"id":900124,"shared":true,"job_time_utc":"2026-09-01T13:00:00Z"},`+
			`{"id":900123,"shared":true,"job_time_utc":"2026-09-01T11:00:00Z"}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	bookings, err := client.GetBookingInfo(context.Background(), 900123, true)
	require.NoError(t, err)
	require.Len(t, bookings, 2)

	SortBookingsByJobTime(bookings)
	assert.Equal(t, 900123, bookings[0].ID)
	assert.Equal(t, 900124, bookings[1].ID)
}

func TestSearchDriverCleansQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "56912345678", r.URL.Query().Get("q"))
		_, _ = io.WriteString(w, `{"fleet_id":77}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	fleetID, err := client.SearchDriver(context.Background(), "  +56912345678 ")
	require.NoError(t, err)
	assert.Equal(t, 77, fleetID)
}

func TestGetZoneServices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/airport-zones/1/services", r.URL.Path)
		_, _ = io.WriteString(w, `[{"vehicle_number":42,"driver_name":"Juan Pérez","service_type":"shared","position":1}]`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)

	services, err := client.GetZoneServices(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, services, 1)
	assert.Equal(t, 1, services[0].Position)
}
