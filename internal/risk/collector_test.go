package risk

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHistoryProvider struct {
	record *LoginHistory
	err    error
	calls  int
}

func (f *fakeHistoryProvider) Get(_ context.Context, _ string) (*LoginHistory, error) {
	f.calls++
	return f.record, f.err
}

type fakeDeviceChecker struct {
	newDevice bool
	err       error
	calls     int
	lastFP    string
}

func (f *fakeDeviceChecker) IsNewDevice(_ context.Context, _, fingerprint string) (bool, error) {
	f.calls++
	f.lastFP = fingerprint
	return f.newDevice, f.err
}

func TestCollect_HeadersPassedThrough(t *testing.T) {
	history := &fakeHistoryProvider{}
	devices := &fakeDeviceChecker{newDevice: true}
	collector := NewCollector(history, devices)

	r := httptest.NewRequest("GET", "/session/risk", nil)
	r.Header.Set("User-Agent", "curl/7.64.1")
	r.Header.Set("X-User-Location", "Berlin, Germany")
	r.Header.Set("X-Device-Fingerprint", "fp-abc123")
	r.Header.Set("X-Forwarded-For", "198.51.100.4, 10.0.0.1")

	f, err := collector.Collect(context.Background(), r, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", f.UserID)
	assert.Equal(t, "198.51.100.4", f.IPAddress)
	assert.Equal(t, "curl/7.64.1", f.UserAgent)
	assert.Equal(t, "Berlin, Germany", f.Location)
	assert.Equal(t, "fp-abc123", f.DeviceFingerprint)
	assert.True(t, f.NewDevice)
	assert.Equal(t, "fp-abc123", devices.lastFP)
	assert.WithinDuration(t, time.Now(), f.LoginTime, 2*time.Second)
}

func TestCollect_HistoryRecordApplied(t *testing.T) {
	lastLogin := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	age := 30 * time.Minute
	history := &fakeHistoryProvider{record: &LoginHistory{
		LastLoginAt:       &lastLogin,
		LastLoginLocation: "New York, USA",
		FailedAttempts:    3,
		AccountAge:        &age,
	}}
	collector := NewCollector(history, &fakeDeviceChecker{})

	r := httptest.NewRequest("GET", "/", nil)
	f, err := collector.Collect(context.Background(), r, "user-1")
	require.NoError(t, err)

	assert.Equal(t, &lastLogin, f.PreviousLoginTime)
	assert.Equal(t, "New York, USA", f.PreviousLoginLocation)
	assert.Equal(t, 3, f.FailedAttempts)
	require.NotNil(t, f.AccountAge)
	assert.Equal(t, age, *f.AccountAge)
}

func TestCollect_MissingHistoryIsNotAnError(t *testing.T) {
	collector := NewCollector(&fakeHistoryProvider{record: nil}, &fakeDeviceChecker{})

	r := httptest.NewRequest("GET", "/", nil)
	f, err := collector.Collect(context.Background(), r, "user-1")
	require.NoError(t, err)

	assert.Zero(t, f.FailedAttempts)
	assert.Nil(t, f.PreviousLoginTime)
	assert.Nil(t, f.AccountAge)
	assert.Empty(t, f.PreviousLoginLocation)
}

func TestCollect_HistoryErrorPropagates(t *testing.T) {
	history := &fakeHistoryProvider{err: fmt.Errorf("connection refused")}
	collector := NewCollector(history, &fakeDeviceChecker{})

	r := httptest.NewRequest("GET", "/", nil)
	_, err := collector.Collect(context.Background(), r, "user-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "login history lookup")
}

func TestCollect_DeviceErrorPropagates(t *testing.T) {
	devices := &fakeDeviceChecker{err: fmt.Errorf("connection refused")}
	collector := NewCollector(&fakeHistoryProvider{}, devices)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Device-Fingerprint", "fp-abc123")
	_, err := collector.Collect(context.Background(), r, "user-1")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "device lookup")
}

func TestCollect_NoFingerprintSkipsDeviceLookup(t *testing.T) {
	devices := &fakeDeviceChecker{newDevice: true}
	collector := NewCollector(&fakeHistoryProvider{}, devices)

	r := httptest.NewRequest("GET", "/", nil)
	f, err := collector.Collect(context.Background(), r, "user-1")
	require.NoError(t, err)

	assert.False(t, f.NewDevice)
	assert.Zero(t, devices.calls)
}

func TestClientIP_ResolutionOrder(t *testing.T) {
	t.Run("X-Forwarded-For first entry wins", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Forwarded-For", " 198.51.100.4 , 10.0.0.1")
		r.Header.Set("X-Real-IP", "203.0.113.9")
		assert.Equal(t, "198.51.100.4", ClientIP(r))
	})

	t.Run("X-Real-IP next", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.Header.Set("X-Real-IP", "203.0.113.9")
		assert.Equal(t, "203.0.113.9", ClientIP(r))
	})

	t.Run("peer address with port stripped", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = "192.0.2.10:54321"
		assert.Equal(t, "192.0.2.10", ClientIP(r))
	})

	t.Run("unknown when nothing available", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/", nil)
		r.RemoteAddr = ""
		assert.Equal(t, "unknown", ClientIP(r))
	})
}
