// Package recommend derives suggested next actions for a codebase from its
// skill-usage history and a static knowledge table. Externally computed
// recommendations take priority while fresh. Every derivation is a pure
// function of the codebase record and the engine's clock.
package recommend

import (
	"fmt"
	"sort"
	"time"

	"github.com/shipkit/mission-control/internal/models"
)

// MaxRecommendations caps the returned list.
const MaxRecommendations = 5

// ExternalFreshFor is how long an externally supplied recommendation set
// wins over the engine's own derivation.
const ExternalFreshFor = time.Hour

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// Engine derives recommendations. The clock is injectable for tests.
type Engine struct {
	knowledge Knowledge
	now       func() time.Time
}

// NewEngine creates an engine over the given knowledge table. A nil table
// uses the built-in defaults.
func NewEngine(knowledge Knowledge) *Engine {
	if knowledge == nil {
		knowledge = DefaultKnowledge()
	}
	return &Engine{knowledge: knowledge, now: time.Now}
}

// WithClock returns a copy of the engine using the given clock.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	return &Engine{knowledge: e.knowledge, now: now}
}

// Recommend returns up to MaxRecommendations suggestions for the codebase,
// sorted by priority (high, medium, low; ties keep discovery order).
func (e *Engine) Recommend(cb *models.Codebase) []models.Recommendation {
	if cb == nil {
		return []models.Recommendation{}
	}

	// Fresh external analysis wins verbatim.
	if ext := cb.ClaudeRecommendations; ext != nil {
		if analyzed, err := time.Parse(time.RFC3339, ext.AnalyzedAt); err == nil {
			if e.now().Sub(analyzed) < ExternalFreshFor {
				return truncate(ext.Recommendations)
			}
		}
	}

	now := float64(e.now().Unix())
	const daySeconds = 86400

	var recs []models.Recommendation

	// Iterate skills in a stable order so ties sort deterministically.
	for _, skillName := range sortedSkillNames(cb.Skills) {
		usage := cb.Skills[skillName]
		knowledge, ok := e.knowledge[skillName]
		if !ok {
			continue
		}

		daysSinceUse := (now - usage.LastUsed) / daySeconds
		if knowledge.StaleAfterDays > 0 && daysSinceUse > float64(knowledge.StaleAfterDays) {
			priority := "medium"
			if knowledge.Category == "knowledge" {
				priority = "high"
			}
			recs = append(recs, models.Recommendation{
				Type:     "stale",
				Skill:    skillName,
				Message:  fmt.Sprintf("%s last used %d days ago - consider refreshing", skillName, int(daysSinceUse)),
				Priority: priority,
				Action:   "/" + skillName,
				Source:   "hardcoded",
			})
		}

		for _, suggested := range knowledge.Suggests {
			if _, used := cb.Skills[suggested]; used {
				continue
			}
			recs = append(recs, models.Recommendation{
				Type:     "suggested",
				Skill:    suggested,
				Message:  fmt.Sprintf("After %s, consider running %s", skillName, suggested),
				Priority: "low",
				Action:   "/" + suggested,
				Source:   "hardcoded",
			})
		}
	}

	for _, skill := range FoundationalSkills {
		if _, used := cb.Skills[skill]; used {
			continue
		}
		recs = append(recs, models.Recommendation{
			Type:     "missing",
			Skill:    skill,
			Message:  fmt.Sprintf("%s has never been run - recommended for new projects", skill),
			Priority: "high",
			Action:   "/" + skill,
			Source:   "hardcoded",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return truncate(recs)
}

func truncate(recs []models.Recommendation) []models.Recommendation {
	if recs == nil {
		return []models.Recommendation{}
	}
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	return recs
}

func sortedSkillNames(skills map[string]*models.SkillUsage) []string {
	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
