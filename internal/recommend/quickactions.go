package recommend

import "github.com/shipkit/mission-control/internal/models"

// MaxQuickActions caps the quick action list.
const MaxQuickActions = 8

// QuickActions returns context-aware skill shortcuts for the dashboard.
// A nil codebase yields the default set.
func QuickActions(cb *models.Codebase) []models.QuickAction {
	used := func(skill string) bool {
		if cb == nil {
			return false
		}
		_, ok := cb.Skills[skill]
		return ok
	}

	actions := []models.QuickAction{
		{Skill: "shipkit-project-status", Label: "Check Status", Icon: "📊"},
		{Skill: "shipkit-work-memory", Label: "Log Progress", Icon: "📝"},
	}

	if used("shipkit-spec") && !used("shipkit-plan") {
		actions = append(actions, models.QuickAction{Skill: "shipkit-plan", Label: "Create Plan", Icon: "📋"})
	}

	if used("shipkit-plan") {
		actions = append(actions,
			models.QuickAction{Skill: "shipkit-build-relentlessly", Label: "Build", Icon: "🔨"},
			models.QuickAction{Skill: "shipkit-test-relentlessly", Label: "Test", Icon: "🧪"},
		)
	}

	actions = append(actions,
		models.QuickAction{Skill: "shipkit-verify", Label: "Verify", Icon: "✅"},
		models.QuickAction{Skill: "shipkit-preflight", Label: "Preflight", Icon: "🚀"},
	)

	if len(actions) > MaxQuickActions {
		actions = actions[:MaxQuickActions]
	}
	return actions
}
