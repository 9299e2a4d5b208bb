package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkit/mission-control/internal/models"
)

func skillNames(actions []models.QuickAction) []string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Skill
	}
	return names
}

func TestQuickActions_NilCodebaseDefaults(t *testing.T) {
	actions := QuickActions(nil)
	assert.Equal(t, []string{
		"shipkit-project-status",
		"shipkit-work-memory",
		"shipkit-verify",
		"shipkit-preflight",
	}, skillNames(actions))
}

func TestQuickActions_SpecWithoutPlanSuggestsPlan(t *testing.T) {
	cb := codebaseWith(map[string]float64{"shipkit-spec": 1000})
	assert.Contains(t, skillNames(QuickActions(cb)), "shipkit-plan")
}

func TestQuickActions_PlanUnlocksBuildAndTest(t *testing.T) {
	cb := codebaseWith(map[string]float64{"shipkit-spec": 1000, "shipkit-plan": 1005})
	names := skillNames(QuickActions(cb))
	assert.Contains(t, names, "shipkit-build-relentlessly")
	assert.Contains(t, names, "shipkit-test-relentlessly")
	assert.NotContains(t, names, "shipkit-plan") // already used, gate closed
}

func TestQuickActions_CappedAtEight(t *testing.T) {
	cb := codebaseWith(map[string]float64{"shipkit-spec": 1000, "shipkit-plan": 1005})
	actions := QuickActions(cb)
	require.LessOrEqual(t, len(actions), MaxQuickActions)
	for _, a := range actions {
		assert.NotEmpty(t, a.Label)
		assert.NotEmpty(t, a.Icon)
	}
}
