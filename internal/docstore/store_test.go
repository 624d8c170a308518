package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"shopping-matrix/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start mongo container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	client, err := Connect(ctx, fmt.Sprintf("mongodb://%s:%s", host, port.Port()))
	require.NoError(t, err, "connect mongo")

	store := New(client.Database("shopping_matrix_test"), nil)
	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("disconnect mongo: %v", err)
		}
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}
	return store, cleanup
}

func TestStoreCRUD(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	var ids []string
	for i := 0; i < 7; i++ {
		id, err := store.Create(ctx, "feedback", bson.M{"n": i, "_id": "ignored"})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	list, err := store.List(ctx, "feedback", 0)
	require.NoError(t, err)
	require.Len(t, list, 7)
	assert.EqualValues(t, 6, list[0]["n"], "newest first")

	page, err := store.Cursor(ctx, "feedback", "", 0)
	require.NoError(t, err)
	require.Len(t, page.Documents, DefaultCursorLimit)
	require.NotEmpty(t, page.NextCursor)

	next, err := store.Cursor(ctx, "feedback", page.NextCursor, 0)
	require.NoError(t, err)
	assert.Len(t, next.Documents, 2)
	assert.Empty(t, next.NextCursor)

	modified, err := store.Update(ctx, "feedback", ids[0], bson.M{"n": 100})
	require.NoError(t, err)
	assert.EqualValues(t, 1, modified)

	deleted, err := store.Delete(ctx, "feedback", ids[1])
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = store.Delete(ctx, "feedback", ids[1])
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.Update(ctx, "feedback", primitive.NewObjectID().Hex(), bson.M{"n": 1})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStoreRejectsBadInput(t *testing.T) {
	store := New(nil, nil)
	ctx := context.Background()

	_, err := store.Create(ctx, "", bson.M{})
	assert.ErrorIs(t, err, ErrInvalidCollection)
	_, err = store.List(ctx, "system.users", 1)
	assert.ErrorIs(t, err, ErrInvalidCollection)
	_, err = store.List(ctx, "bad$name", 1)
	assert.ErrorIs(t, err, ErrInvalidCollection)
}

func TestClampLimit(t *testing.T) {
	assert.EqualValues(t, DefaultListLimit, clampLimit(0, DefaultListLimit))
	assert.EqualValues(t, DefaultCursorLimit, clampLimit(-3, DefaultCursorLimit))
	assert.EqualValues(t, 7, clampLimit(7, DefaultListLimit))
	assert.EqualValues(t, MaxLimit, clampLimit(10_000, DefaultListLimit))
}
