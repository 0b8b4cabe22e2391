package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/gantt/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

func TestActivityRepository_LogAndList(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActivityRepository(db)
	ctx := context.Background()

	sessionID := "s1"
	taskID := "t1"
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	entries := []*activity.ActivityEntry{
		{ProjectID: "p1", SessionID: &sessionID, TaskID: &taskID, ActivityType: activity.TypeTaskAdded, Summary: "added", CreatedAt: base},
		{ProjectID: "p1", SessionID: &sessionID, ActivityType: activity.TypeUndo, Summary: "undo", CreatedAt: base.Add(time.Minute)},
		{ProjectID: "p2", ActivityType: activity.TypeProjectImported, Summary: "imported", Details: `{"from_version":1}`, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Log(ctx, "tenant1", e))
		require.NotZero(t, e.ID)
	}

	list, err := repo.List(ctx, "tenant1", activity.ListActivityOptions{ProjectID: "p1"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, activity.TypeUndo, list[0].ActivityType)
	require.Nil(t, list[0].TaskID)
	require.Equal(t, "t1", *list[1].TaskID)

	list, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{TaskID: &taskID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	kind := activity.TypeProjectImported
	list, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{ActivityType: &kind})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, `{"from_version":1}`, list[0].Details)

	list, err = repo.List(ctx, "tenant1", activity.ListActivityOptions{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, activity.TypeUndo, list[0].ActivityType)

	list, err = repo.List(ctx, "tenant2", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Empty(t, list)
}
