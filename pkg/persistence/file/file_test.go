package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodreg/sampletrail/pkg/models"
)

func TestNewPersistence(t *testing.T) {
	// Test with regular path
	fp := NewPersistence("/tmp/test")
	assert.Equal(t, "/tmp/test", fp.root)

	// Test with file:// prefix
	fp = NewPersistence("file:///tmp/test")
	assert.Equal(t, "/tmp/test", fp.root)
}

func TestPersistence_Close(t *testing.T) {
	fp := NewPersistence("./test-data")
	err := fp.Close(t.Context())
	assert.NoError(t, err)
}

func TestPersistence_HealthCheck(t *testing.T) {
	fp := NewPersistence(t.TempDir())
	assert.NoError(t, fp.HealthCheck(t.Context()))

	fp = NewPersistence("/nonexistent/sampletrail-data")
	assert.Error(t, fp.HealthCheck(t.Context()))
}

func TestSettingsRepository_DefaultsWhenUnset(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	settings, err := fp.Settings().Settings(t.Context())
	require.NoError(t, err)

	assert.Equal(t, models.DefaultNodeEditHours, settings.NodeEditHours)
	assert.True(t, settings.AllowNodeEdit)
}

func TestSettingsRepository_SaveAndLoad(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	err := fp.Settings().SaveSettings(t.Context(), models.WorkflowSettings{
		NodeEditHours: 72,
		AllowNodeEdit: false,
	})
	require.NoError(t, err)

	settings, err := fp.Settings().Settings(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 72, settings.NodeEditHours)
	assert.False(t, settings.AllowNodeEdit)
}
