package sqlite

import (
	"context"
	"testing"
	"time"

	"treatment-tracker/internal/domain/migration"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestSource(t *testing.T) *Source {
	src, err := Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, src.EnsureSchema())
	t.Cleanup(func() { _ = src.Close() })
	return src
}

func TestSource_LoadLegacy(t *testing.T) {
	src := setupTestSource(t)
	db := src.db
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	takenAt := day1.Add(20 * time.Hour)

	require.NoError(t, db.Create(&legacyPlan{CycleID: "c-1", CreatedAt: day1}).Error)
	require.NoError(t, db.Create(&[]legacyPlanEntry{
		{ID: "e2", CycleID: "c-1", Position: 2, Name: "Dex", Dosage: "0.5 mg", Time: "8:00 AM", StartDay: 1, EndDay: 2},
		{ID: "e1", CycleID: "c-1", Position: 1, Name: "Gonal-F", Dosage: "225 IU", Hour: "8", Minute: "0", Meridiem: "PM", StartDay: 1, EndDay: 5, Refrigerated: true},
	}).Error)
	require.NoError(t, db.Create(&[]legacyDay{
		{ID: "d2", CycleID: "c-1", CycleDay: 2},
		{ID: "d1", CycleID: "c-1", CycleDay: 1, Date: &day1},
	}).Error)
	require.NoError(t, db.Create(&legacyAdherence{DayID: "d1", RecurringEntryID: "e1", Taken: true, TakenAt: &takenAt}).Error)
	require.NoError(t, db.Create(&legacyOneTime{ID: "o1", DayID: "d2", Name: "Trigger", Dosage: "1 vial", Time: "9:00 PM"}).Error)
	require.NoError(t, db.Create(&legacyEmbedded{ID: "m1", DayID: "d1", Name: "Aspirin", Dose: "81 mg", Time: "7:00 AM", Completed: true}).Error)

	b, err := src.LoadLegacy(context.Background(), "c-1")
	require.NoError(t, err)

	require.NotNil(t, b.Plan)
	require.Len(t, b.Plan.Entries, 2)
	assert.Equal(t, "e1", b.Plan.Entries[0].ID)
	assert.Equal(t, "PM", b.Plan.Entries[0].Meridiem)
	assert.True(t, b.Plan.Entries[0].Refrigerated)

	require.Len(t, b.Days, 2)
	assert.Equal(t, 1, b.Days[0].CycleDay)
	assert.True(t, b.Days[0].Date.Equal(day1))
	require.Len(t, b.Days[0].Adherence, 1)
	assert.True(t, b.Days[0].Adherence[0].Taken)
	require.Len(t, b.Days[0].Embedded, 1)
	assert.Equal(t, "81 mg", b.Days[0].Embedded[0].Dose)
	require.Len(t, b.Days[1].OneTime, 1)
	assert.Equal(t, "Trigger", b.Days[1].OneTime[0].Name)

	// el lote pasa entero por el migrador
	rep := migration.NewMigrator().Migrate(b, migration.Options{})
	assert.Zero(t, rep.ErrorCount)
	assert.Len(t, rep.Medications, 9)
}

func TestSource_LoadLegacy_NotFound(t *testing.T) {
	src := setupTestSource(t)
	_, err := src.LoadLegacy(context.Background(), "missing")
	assert.ErrorIs(t, err, migration.ErrNotFound)
}
