package track

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testDBConnString string

func TestMain(m *testing.M) {
	flag.Parse()

	var terminate func()

	if !testing.Short() {
		ctx := context.Background()
		testDBConnString, terminate = setupContainer(ctx)
	}

	code := m.Run()

	if terminate != nil {
		terminate()
	}

	os.Exit(code)
}

func setupContainer(ctx context.Context) (string, func()) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("Recovered from panic in setupContainer: %v\n", r)
		}
	}()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("auraxis_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		fmt.Printf("WARNING: Failed to start postgres container: %v\n", err)
		return "", func() {}
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Printf("WARNING: Failed to get connection string: %v\n", err)
		_ = pgContainer.Terminate(ctx)
		return "", func() {}
	}

	return connStr, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}
}

func setupStore(t *testing.T) Store {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if testDBConnString == "" {
		t.Skip("Skipping integration test: database not available")
	}

	ctx := context.Background()
	pool, err := NewPool(ctx, testDBConnString)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `DROP TABLE IF EXISTS stream_events`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, Schema)
	require.NoError(t, err)

	return NewStore(pool)
}

func TestStoreRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Date(2022, 4, 15, 6, 0, 0, 0, time.UTC)
	seed := []StoredEvent{
		{EventName: "Death", CharacterID: 101, AttackerID: 202, WorldID: 13, ZoneID: 2,
			EventTime: base, Payload: json.RawMessage(`{"character_id":"101","attacker_character_id":"202"}`)},
		{EventName: "Death", CharacterID: 202, AttackerID: 101, WorldID: 13, ZoneID: 2,
			EventTime: base.Add(time.Minute)},
		{EventName: "PlayerLogin", CharacterID: 101, WorldID: 13,
			EventTime: base.Add(2 * time.Minute)},
		{EventName: "Death", CharacterID: 303, AttackerID: 404, WorldID: 17, ZoneID: 4,
			EventTime: base.Add(3 * time.Minute)},
	}
	for _, e := range seed {
		require.NoError(t, store.InsertEvent(ctx, e))
	}

	t.Run("EventsByCharacter matches subject and attacker", func(t *testing.T) {
		events, err := store.EventsByCharacter(ctx, 101, 10)
		require.NoError(t, err)
		require.Len(t, events, 3)

		// Newest first.
		assert.Equal(t, "PlayerLogin", events[0].EventName)
		assert.Equal(t, "Death", events[1].EventName)
		assert.Equal(t, int64(101), events[1].AttackerID)
		assert.Equal(t, "Death", events[2].EventName)
		assert.Equal(t, int64(101), events[2].CharacterID)
		assert.True(t, events[2].EventTime.Equal(base))
		assert.JSONEq(t, `{"character_id":"101","attacker_character_id":"202"}`,
			string(events[2].Payload))
	})

	t.Run("EventsByType honors the limit", func(t *testing.T) {
		events, err := store.EventsByType(ctx, "Death", 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, int64(303), events[0].CharacterID)
		assert.Equal(t, int64(202), events[1].CharacterID)
	})

	t.Run("Recent combines filters", func(t *testing.T) {
		events, err := store.Recent(ctx, EventFilter{CharacterID: 101, EventName: "Death"})
		require.NoError(t, err)
		require.Len(t, events, 2)

		events, err = store.Recent(ctx, EventFilter{Since: base.Add(2 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, events, 2)

		events, err = store.Recent(ctx, EventFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, int64(303), events[0].CharacterID)
	})

	t.Run("missing payload defaults to an empty object", func(t *testing.T) {
		events, err := store.Recent(ctx, EventFilter{CharacterID: 303})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.JSONEq(t, `{}`, string(events[0].Payload))
	})

	t.Run("CountByType groups busiest first", func(t *testing.T) {
		counts, err := store.CountByType(ctx)
		require.NoError(t, err)
		require.Len(t, counts, 2)
		assert.Equal(t, TypeCount{EventName: "Death", Count: 3}, counts[0])
		assert.Equal(t, TypeCount{EventName: "PlayerLogin", Count: 1}, counts[1])
	})

	t.Run("CleanupBefore removes old rows only", func(t *testing.T) {
		deleted, err := store.CleanupBefore(ctx, base.Add(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		counts, err := store.CountByType(ctx)
		require.NoError(t, err)
		assert.Equal(t, TypeCount{EventName: "Death", Count: 2}, counts[0])
	})
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultQueryLimit, clampLimit(0))
	assert.Equal(t, DefaultQueryLimit, clampLimit(-5))
	assert.Equal(t, 25, clampLimit(25))
	assert.Equal(t, MaxQueryLimit, clampLimit(MaxQueryLimit+1))
}
