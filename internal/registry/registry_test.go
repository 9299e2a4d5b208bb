package registry

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkit/mission-control/internal/models"
)

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	return New(5*time.Minute, time.Hour, zerolog.Nop())
}

func event(sessionID, kind string, ts float64) models.Event {
	return models.Event{
		SessionID:   sessionID,
		Project:     "demo",
		ProjectPath: "/p",
		Event:       kind,
		Timestamp:   ts,
	}
}

func TestApply_CreatesInstance(t *testing.T) {
	r := testRegistry(t)
	r.Apply(event("s1", models.EventSessionStart, 1000))

	inst, ok := r.Get("s1")
	require.True(t, ok)
	assert.Equal(t, "s1", inst.SessionID)
	assert.Equal(t, "demo", inst.Project)
	assert.Equal(t, float64(1000), inst.FirstSeen)
	assert.Equal(t, models.StatusActive, inst.Status)
	assert.Equal(t, 0, inst.ToolCount)
}

func TestApply_ToolCountResetsOnSessionStart(t *testing.T) {
	r := testRegistry(t)
	r.Apply(event("s1", models.EventSessionStart, 1000))

	ev := event("s1", "ToolUse", 1005)
	ev.Tool = "Read"
	r.Apply(ev)
	ev.Timestamp = 1010
	r.Apply(ev)

	inst, _ := r.Get("s1")
	assert.Equal(t, 2, inst.ToolCount)

	r.Apply(event("s1", models.EventSessionStart, 1020))
	inst, _ = r.Get("s1")
	assert.Equal(t, 0, inst.ToolCount)
}

func TestApply_StatusTransitions(t *testing.T) {
	r := testRegistry(t)

	r.Apply(event("s1", "ToolUse", 1000))
	inst, _ := r.Get("s1")
	assert.Equal(t, models.StatusActive, inst.Status)

	r.Apply(event("s1", models.EventStop, 1005))
	inst, _ = r.Get("s1")
	assert.Equal(t, models.StatusStopped, inst.Status)

	// Any event after a Stop revives the instance.
	r.Apply(event("s1", "Notification", 1010))
	inst, _ = r.Get("s1")
	assert.Equal(t, models.StatusActive, inst.Status)
}

func TestApply_SkillSetDeduplicates(t *testing.T) {
	r := testRegistry(t)

	ev := event("s1", "ToolUse", 1000)
	ev.Skill = "shipkit-spec"
	r.Apply(ev)
	r.Apply(ev)
	ev.Skill = "shipkit-plan"
	r.Apply(ev)

	inst, _ := r.Get("s1")
	assert.Equal(t, []string{"shipkit-spec", "shipkit-plan"}, inst.Skills)
}

func TestApply_ModeOverridesWithoutSessionEvent(t *testing.T) {
	r := testRegistry(t)

	ev := event("s1", "Notification", 1000)
	ev.Mode = models.ModeStandby
	r.Apply(ev)

	inst, _ := r.Get("s1")
	assert.Equal(t, models.ModeStandby, inst.Mode)
	assert.Equal(t, models.StatusActive, inst.Status)

	// Stop clears the mode.
	r.Apply(event("s1", models.EventStop, 1005))
	inst, _ = r.Get("s1")
	assert.Empty(t, inst.Mode)

	// SessionStart clears it too, unless the payload re-sets it.
	ev = event("s1", models.EventSessionStart, 1010)
	ev.Mode = models.ModeStandby
	r.Apply(ev)
	inst, _ = r.Get("s1")
	assert.Equal(t, models.ModeStandby, inst.Mode)
}

func TestSweep_MarksStaleAndEvicts(t *testing.T) {
	r := testRegistry(t)
	now := time.Now()

	r.Apply(event("fresh", "ToolUse", float64(now.Unix())))
	r.Apply(event("idle", "ToolUse", float64(now.Add(-10*time.Minute).Unix())))
	r.Apply(event("gone", "ToolUse", float64(now.Add(-2*time.Hour).Unix())))

	// Status never flips outside the sweep.
	inst, _ := r.Get("idle")
	assert.Equal(t, models.StatusActive, inst.Status)

	r.Sweep(now)

	inst, _ = r.Get("fresh")
	assert.Equal(t, models.StatusActive, inst.Status)

	inst, _ = r.Get("idle")
	assert.Equal(t, models.StatusStale, inst.Status)

	_, ok := r.Get("gone")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Count())
}

func TestList_SortedByLastSeenDesc(t *testing.T) {
	r := testRegistry(t)
	r.Apply(event("old", "ToolUse", 1000))
	r.Apply(event("new", "ToolUse", 2000))
	r.Apply(event("mid", "ToolUse", 1500))

	list := r.List()
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].SessionID)
	assert.Equal(t, "mid", list[1].SessionID)
	assert.Equal(t, "old", list[2].SessionID)
}

func TestActiveCount(t *testing.T) {
	r := testRegistry(t)
	r.Apply(event("s1", "ToolUse", 1000))
	r.Apply(event("s2", "ToolUse", 1000))
	r.Apply(event("s2", models.EventStop, 1001))

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, 1, r.ActiveCount())
}
