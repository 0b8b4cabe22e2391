package codec_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/gantt/internal/codec"
	"github.com/rpggio/gantt/internal/domain/task"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *codec.Document {
	start := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	phase := task.New("Phase 1", start, start.AddDate(0, 0, 4))
	child := task.New("Design", start, start.AddDate(0, 0, 2))
	child.SetParent(phase.ID)
	child.Priority = task.PriorityHigh
	child.Description = "Wireframes"
	child.Progress = 0.25
	group := "legacy"
	child.Group = &group
	ms := task.NewMilestone("Ship", start.AddDate(0, 0, 5))

	return &codec.Document{
		Version: codec.CurrentVersion,
		Name:    "Roadmap",
		Tasks:   []task.Task{phase, child, ms},
		Dependencies: []task.Dependency{
			{FromTask: child.ID, ToTask: ms.ID, Kind: task.FinishToStart},
			{FromTask: phase.ID, ToTask: uuid.New(), Kind: task.StartToFinish},
		},
		Created:  time.Date(2023, 12, 31, 8, 0, 0, 0, time.UTC),
		Modified: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range []codec.Format{codec.FormatJSON, codec.FormatYAML} {
		doc := sampleDocument()
		data, err := codec.Marshal(doc, format)
		require.NoError(t, err, format)

		got, err := codec.Unmarshal(data, format)
		require.NoError(t, err, format)
		require.Equal(t, doc, got, format)
	}
}

func TestMarshal_WritesCurrentVersionAndFieldShapes(t *testing.T) {
	doc := sampleDocument()
	doc.Version = 1

	data, err := codec.Marshal(doc, codec.FormatJSON)
	require.NoError(t, err)
	s := string(data)
	require.Contains(t, s, `"version": 3`)
	require.Contains(t, s, `"start": "2024-01-01T09:30:00"`)
	require.Contains(t, s, `"parent_id": null`)
	require.Contains(t, s, `"is_milestone": true`)
	require.Contains(t, s, `"kind": "StartToFinish"`)
}

func TestUnmarshal_LegacyVersionOne(t *testing.T) {
	data := []byte(`{
		"name": "Old plan",
		"tasks": [
			{"id": "0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01", "name": "Dig", "start": "2023-05-01",
			 "end": "2023-05-04", "progress": 0.5, "group": "Site", "color": [70,130,180,255],
			 "is_milestone": false}
		],
		"dependencies": [
			{"from_task": "0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01", "to_task": "0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a02"}
		],
		"created": "2023-04-30T10:00:00Z",
		"modified": "2023-04-30T11:00:00.5+02:00"
	}`)

	doc, err := codec.Unmarshal(data, codec.FormatJSON)
	require.NoError(t, err)
	require.Equal(t, 1, doc.Version)
	require.Len(t, doc.Tasks, 1)

	dig := doc.Tasks[0]
	require.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), dig.Start)
	require.Equal(t, time.Date(2023, 5, 4, 0, 0, 0, 0, time.UTC), dig.End)
	require.Equal(t, task.PriorityNone, dig.Priority)
	require.False(t, dig.HasParent())
	require.Equal(t, "Site", *dig.Group)
	require.Equal(t, task.DefaultTaskColor, dig.Color)

	require.Equal(t, task.FinishToStart, doc.Dependencies[0].Kind)
	require.Equal(t, time.Date(2023, 4, 30, 9, 0, 0, 500_000_000, time.UTC), doc.Modified)
}

func TestUnmarshal_VersionTwoSpaceSeparated(t *testing.T) {
	data := []byte(`
version: 2
name: Mid plan
tasks:
  - id: 0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01
    name: Pour
    start: "2023-05-01 08:00:00"
    end: "2023-05-01 17:30:00"
    progress: 1
    parent_id: 0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a09
    priority: Critical
    description: concrete
    color: [255, 165, 0, 255]
    is_milestone: false
dependencies: []
created: "2023-04-30 10:00:00"
modified: "2023-04-30 10:00:00"
`)
	doc, err := codec.Unmarshal(data, codec.FormatYAML)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Version)

	pour := doc.Tasks[0]
	require.Equal(t, time.Date(2023, 5, 1, 17, 30, 0, 0, time.UTC), pour.End)
	require.Equal(t, task.PriorityCritical, pour.Priority)
	require.True(t, pour.HasParent())
	require.Equal(t, 1.0, pour.Progress)
}

func TestUnmarshal_FailsWholeDocument(t *testing.T) {
	cases := map[string]struct {
		data  string
		field string
	}{
		"bad start": {
			data:  `{"version":3,"name":"x","tasks":[{"id":"0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01","name":"a","start":"01/05/2023","end":"2023-05-01","color":[0,0,0,0]}],"dependencies":[]}`,
			field: "tasks[0].start",
		},
		"bad id": {
			data:  `{"version":3,"name":"x","tasks":[{"id":"nope","name":"a","start":"2023-05-01","end":"2023-05-01","color":[0,0,0,0]}],"dependencies":[]}`,
			field: "tasks[0].id",
		},
		"bad kind": {
			data:  `{"version":3,"name":"x","tasks":[],"dependencies":[{"from_task":"0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a01","to_task":"0b0f1f4e-8a51-4c8b-9f2e-1b7d7f8c1a02","kind":"Diagonal"}]}`,
			field: "dependencies[0].kind",
		},
	}
	for name, tc := range cases {
		_, err := codec.Unmarshal([]byte(tc.data), codec.FormatJSON)
		require.Error(t, err, name)
		require.Contains(t, err.Error(), tc.field, name)
	}

	_, err := codec.Unmarshal([]byte(`{"version":9,"name":"x"}`), codec.FormatJSON)
	require.ErrorIs(t, err, codec.ErrUnsupportedVersion)
}

func TestParseFormat(t *testing.T) {
	f, err := codec.ParseFormat("YML")
	require.NoError(t, err)
	require.Equal(t, codec.FormatYAML, f)

	_, err = codec.ParseFormat("toml")
	require.ErrorIs(t, err, codec.ErrUnsupportedFormat)

	require.Equal(t, codec.FormatYAML, codec.FormatForPath("plan.yaml"))
	require.Equal(t, codec.FormatJSON, codec.FormatForPath("plan.gantt"))
}
