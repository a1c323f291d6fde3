package entitlement

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidora/models"
)

func testRecorder(store Store) *Recorder {
	r := NewRecorderWithStore(store, log.New(io.Discard, "", 0))
	r.now = func() time.Time { return testNow }
	return r
}

func TestRecordProgressUpsert(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	recorder := testRecorder(store)
	ctx := context.Background()

	require.NoError(t, recorder.RecordProgress(ctx, 1, 10, 120, 0.25))

	entry := store.history[[2]uint{1, 10}]
	require.NotNil(t, entry)
	assert.Equal(t, 120, entry.WatchTimeSeconds)
	assert.Equal(t, 0.25, entry.Progress)
	assert.Equal(t, testNow, entry.LastWatchedAt)

	// Overwrite, including with lower progress: re-watching from the start
	// resets the row rather than being clamped.
	require.NoError(t, recorder.RecordProgress(ctx, 1, 10, 30, 0.05))
	entry = store.history[[2]uint{1, 10}]
	assert.Equal(t, 30, entry.WatchTimeSeconds)
	assert.Equal(t, 0.05, entry.Progress)
	assert.Len(t, store.history, 1)
}

func TestRecordProgressIdempotent(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	recorder := testRecorder(store)
	ctx := context.Background()

	require.NoError(t, recorder.RecordProgress(ctx, 1, 10, 300, 0.5))
	once := *store.history[[2]uint{1, 10}]

	require.NoError(t, recorder.RecordProgress(ctx, 1, 10, 300, 0.5))
	twice := *store.history[[2]uint{1, 10}]

	assert.Equal(t, once, twice)
	assert.Len(t, store.history, 1)
}

func TestRecordProgressValidation(t *testing.T) {
	tests := []struct {
		name      string
		watchTime int
		progress  float64
	}{
		{"progress above one", 60, 1.5},
		{"progress below zero", 60, -0.1},
		{"negative watch time", -1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.users[1] = testUser(1)
			store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

			err := testRecorder(store).RecordProgress(context.Background(), 1, 10, tt.watchTime, tt.progress)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			// No partial write.
			assert.Zero(t, store.writes)
			assert.Empty(t, store.history)
		})
	}
}

func TestRecordProgressUnknownEntities(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)

	recorder := testRecorder(store)

	err := recorder.RecordProgress(context.Background(), 2, 10, 60, 0.5)
	assert.ErrorIs(t, err, ErrUserNotFound)

	err = recorder.RecordProgress(context.Background(), 1, 10, 60, 0.5)
	assert.ErrorIs(t, err, ErrVideoNotFound)
	assert.Empty(t, store.history)
}

func TestTouchWatchCreatesZeroProgressRow(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	recorder := testRecorder(store)
	ctx := context.Background()

	require.NoError(t, recorder.TouchWatch(ctx, 1, 10))

	entry := store.history[[2]uint{1, 10}]
	require.NotNil(t, entry)
	assert.Zero(t, entry.Progress)
	assert.Zero(t, entry.WatchTimeSeconds)
	assert.Equal(t, testNow, entry.LastWatchedAt)
}

func TestTouchWatchKeepsExistingProgress(t *testing.T) {
	store := newFakeStore()
	store.users[1] = testUser(1)
	store.videos[10] = testVideo(10, models.TierBasic, models.VideoActive)

	recorder := testRecorder(store)
	ctx := context.Background()

	require.NoError(t, recorder.RecordProgress(ctx, 1, 10, 600, 0.8))

	later := testNow.Add(time.Hour)
	recorder.now = func() time.Time { return later }
	require.NoError(t, recorder.TouchWatch(ctx, 1, 10))

	entry := store.history[[2]uint{1, 10}]
	assert.Equal(t, 0.8, entry.Progress)
	assert.Equal(t, 600, entry.WatchTimeSeconds)
	assert.Equal(t, later, entry.LastWatchedAt)
}
