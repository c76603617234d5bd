package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingFallback(t *testing.T) {
	setting := NewSetting("", "http://localhost:8081", quietLogger())
	assert.Equal(t, "http://localhost:8081", setting.Get())
}

func TestSettingLoadsPersistedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_url.txt")
	require.NoError(t, os.WriteFile(path, []byte("http://saved:9000\n"), 0o644))

	setting := NewSetting(path, "http://fallback", quietLogger())
	assert.Equal(t, "http://saved:9000", setting.Get())
}

func TestSettingSetPersistsAndNotifies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_url.txt")
	setting := NewSetting(path, "http://old", quietLogger())

	var seen []string
	setting.Subscribe(func(v string) { seen = append(seen, v) })

	setting.Set("http://new:8081")
	assert.Equal(t, "http://new:8081", setting.Get())
	assert.Equal(t, []string{"http://new:8081"}, seen)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "http://new:8081\n", string(data))

	// Restarting picks the persisted value up again.
	reloaded := NewSetting(path, "http://fallback", quietLogger())
	assert.Equal(t, "http://new:8081", reloaded.Get())
}

func TestSettingUnsubscribeStopsNotifications(t *testing.T) {
	setting := NewSetting("", "http://old", quietLogger())

	var kept, removed int
	setting.Subscribe(func(string) { kept++ })
	cancel := setting.Subscribe(func(string) { removed++ })

	setting.Set("http://one")
	cancel()
	// Cancelling twice is harmless.
	cancel()
	setting.Set("http://two")

	assert.Equal(t, 2, kept)
	assert.Equal(t, 1, removed)
}

func TestSettingSetUnchangedIsSilent(t *testing.T) {
	setting := NewSetting("", "http://same", quietLogger())

	calls := 0
	setting.Subscribe(func(string) { calls++ })

	setting.Set("http://same")
	assert.Zero(t, calls)
}
