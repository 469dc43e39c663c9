package file

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodreg/sampletrail/pkg/models"
	"github.com/foodreg/sampletrail/pkg/persistence"
)

func TestSampleRepository_SaveAndRetrieve(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	lifted := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	sample := &models.Sample{
		ID:         "FS-2024-001",
		LiftedDate: &lifted,
		LabResult:  "safe",
	}

	err := fp.Samples().SaveSample(t.Context(), sample)
	require.NoError(t, err)
	assert.False(t, sample.CreatedAt.IsZero())

	loaded, err := fp.Samples().SampleByID(t.Context(), "FS-2024-001")
	require.NoError(t, err)
	assert.Equal(t, "safe", loaded.LabResult)
	require.NotNil(t, loaded.LiftedDate)
	assert.True(t, lifted.Equal(*loaded.LiftedDate))
	assert.Nil(t, loaded.DispatchDate)
}

func TestSampleRepository_SampleByID_NotFound(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	_, err := fp.Samples().SampleByID(t.Context(), "FS-2099-999")
	require.Error(t, err)
	assert.True(t, persistence.IsSampleNotFound(err))
}

func TestSampleRepository_UpdateLabFields(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	lifted := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fp.Samples().SaveSample(t.Context(), &models.Sample{
		ID:         "FS-2024-001",
		LiftedDate: &lifted,
	}))

	result := "unsafe"
	reportDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

	err := fp.Samples().UpdateLabFields(t.Context(), "FS-2024-001", persistence.LabFieldsUpdate{
		LabResult:     &result,
		LabReportDate: &reportDate,
	})
	require.NoError(t, err)

	loaded, err := fp.Samples().SampleByID(t.Context(), "FS-2024-001")
	require.NoError(t, err)
	assert.Equal(t, "unsafe", loaded.LabResult)
	require.NotNil(t, loaded.LabReportDate)
	assert.True(t, reportDate.Equal(*loaded.LabReportDate))

	// Untouched fields keep their values
	require.NotNil(t, loaded.LiftedDate)
	assert.True(t, lifted.Equal(*loaded.LiftedDate))
}

func TestSampleRepository_UpdateLabFields_PartialUpdate(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	reportDate := time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, fp.Samples().SaveSample(t.Context(), &models.Sample{
		ID:            "FS-2024-001",
		LabResult:     "safe",
		LabReportDate: &reportDate,
	}))

	result := "unsafe"

	err := fp.Samples().UpdateLabFields(t.Context(), "FS-2024-001", persistence.LabFieldsUpdate{
		LabResult: &result,
	})
	require.NoError(t, err)

	loaded, err := fp.Samples().SampleByID(t.Context(), "FS-2024-001")
	require.NoError(t, err)
	assert.Equal(t, "unsafe", loaded.LabResult)
	require.NotNil(t, loaded.LabReportDate)
	assert.True(t, reportDate.Equal(*loaded.LabReportDate))
}

func TestSampleRepository_UpdateLabFields_NotFound(t *testing.T) {
	fp := NewPersistence(t.TempDir())

	result := "safe"

	err := fp.Samples().UpdateLabFields(t.Context(), "FS-2099-999", persistence.LabFieldsUpdate{LabResult: &result})
	require.Error(t, err)
	assert.True(t, persistence.IsSampleNotFound(err))
}
