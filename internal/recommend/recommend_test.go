package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipkit/mission-control/internal/models"
)

func fixedEngine(t *testing.T, now time.Time) *Engine {
	t.Helper()
	return NewEngine(nil).WithClock(func() time.Time { return now })
}

func codebaseWith(skills map[string]float64) *models.Codebase {
	cb := &models.Codebase{
		ProjectPath: "/p",
		ProjectName: "demo",
		Skills:      make(map[string]*models.SkillUsage),
	}
	for name, lastUsed := range skills {
		cb.Skills[name] = &models.SkillUsage{Name: name, FirstUsed: lastUsed, LastUsed: lastUsed, UseCount: 1}
	}
	return cb
}

func TestRecommend_StaleSkillMediumPriority(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	// shipkit-spec: staleAfterDays=14, category=planning, used 20 days ago.
	cb := codebaseWith(map[string]float64{
		"shipkit-spec":            float64(now.AddDate(0, 0, -20).Unix()),
		"shipkit-plan":            float64(now.Unix()),
		"shipkit-project-context": float64(now.Unix()),
		"shipkit-project-status":  float64(now.Unix()),
	})

	recs := e.Recommend(cb)
	var stale *models.Recommendation
	for i := range recs {
		if recs[i].Type == "stale" && recs[i].Skill == "shipkit-spec" {
			stale = &recs[i]
		}
	}
	require.NotNil(t, stale)
	assert.Equal(t, "medium", stale.Priority)
	assert.Equal(t, "/shipkit-spec", stale.Action)
	assert.Contains(t, stale.Message, "20 days ago")
}

func TestRecommend_StaleKnowledgeSkillHighPriority(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	cb := codebaseWith(map[string]float64{
		"shipkit-work-memory": float64(now.AddDate(0, 0, -3).Unix()), // staleAfterDays=1
	})

	recs := e.Recommend(cb)
	require.NotEmpty(t, recs)
	assert.Equal(t, "stale", recs[0].Type)
	assert.Equal(t, "shipkit-work-memory", recs[0].Skill)
	assert.Equal(t, "high", recs[0].Priority)
}

func TestRecommend_SuggestedFollowUpGaps(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	cb := codebaseWith(map[string]float64{
		"shipkit-verify":          float64(now.Unix()), // suggests preflight
		"shipkit-project-context": float64(now.Unix()),
		"shipkit-project-status":  float64(now.Unix()),
	})
	// project-status suggests spec and plan; verify suggests preflight.

	recs := e.Recommend(cb)
	skills := make(map[string]string)
	for _, r := range recs {
		if r.Type == "suggested" {
			skills[r.Skill] = r.Priority
		}
	}
	assert.Equal(t, "low", skills["shipkit-preflight"])
	assert.Equal(t, "low", skills["shipkit-spec"])
}

func TestRecommend_MissingFoundationalHighPriority(t *testing.T) {
	e := fixedEngine(t, time.Now())

	recs := e.Recommend(codebaseWith(nil))
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, "missing", r.Type)
		assert.Equal(t, "high", r.Priority)
	}
	assert.Equal(t, "shipkit-project-context", recs[0].Skill)
	assert.Equal(t, "shipkit-project-status", recs[1].Skill)
}

func TestRecommend_SortedAndTruncatedToFive(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	// Plenty of gaps: each used skill suggests unused ones, plus two
	// missing foundational skills.
	cb := codebaseWith(map[string]float64{
		"shipkit-spec":              float64(now.AddDate(0, 0, -20).Unix()),
		"shipkit-test-relentlessly": float64(now.Unix()),
	})

	recs := e.Recommend(cb)
	require.Len(t, recs, MaxRecommendations)

	rank := map[string]int{"high": 0, "medium": 1, "low": 2}
	for i := 1; i < len(recs); i++ {
		assert.LessOrEqual(t, rank[recs[i-1].Priority], rank[recs[i].Priority])
	}
	// High-priority missing foundational entries must survive truncation.
	assert.Equal(t, "high", recs[0].Priority)
}

func TestRecommend_FreshExternalWinsVerbatim(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	external := []models.Recommendation{
		{Type: "suggested", Skill: "custom-skill", Priority: "low", Source: "claude-analysis"},
	}
	cb := codebaseWith(nil)
	cb.ClaudeRecommendations = &models.ClaudeRecommendations{
		Recommendations: external,
		Source:          "claude-analysis",
		AnalyzedAt:      now.Add(-30 * time.Minute).Format(time.RFC3339),
	}

	recs := e.Recommend(cb)
	assert.Equal(t, external, recs)
}

func TestRecommend_ExpiredExternalFallsBack(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	cb := codebaseWith(nil)
	cb.ClaudeRecommendations = &models.ClaudeRecommendations{
		Recommendations: []models.Recommendation{{Skill: "custom-skill"}},
		AnalyzedAt:      now.Add(-2 * time.Hour).Format(time.RFC3339),
	}

	recs := e.Recommend(cb)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.NotEqual(t, "custom-skill", r.Skill)
		assert.Equal(t, "hardcoded", r.Source)
	}
}

func TestRecommend_ExternalTruncatedToFive(t *testing.T) {
	now := time.Now()
	e := fixedEngine(t, now)

	var external []models.Recommendation
	for i := 0; i < 9; i++ {
		external = append(external, models.Recommendation{Skill: "s", Priority: "low"})
	}
	cb := codebaseWith(nil)
	cb.ClaudeRecommendations = &models.ClaudeRecommendations{
		Recommendations: external,
		AnalyzedAt:      now.Format(time.RFC3339),
	}

	assert.Len(t, e.Recommend(cb), MaxRecommendations)
}

func TestRecommend_NilCodebase(t *testing.T) {
	e := fixedEngine(t, time.Now())
	assert.Empty(t, e.Recommend(nil))
}

func TestDefaultKnowledge_Entries(t *testing.T) {
	k := DefaultKnowledge()
	require.Contains(t, k, "shipkit-spec")
	assert.Equal(t, 14, k["shipkit-spec"].StaleAfterDays)
	assert.Equal(t, "planning", k["shipkit-spec"].Category)
	assert.Contains(t, k["shipkit-spec"].Suggests, "shipkit-plan")
	assert.Equal(t, "knowledge", k["shipkit-work-memory"].Category)
	assert.Zero(t, k["shipkit-build-relentlessly"].StaleAfterDays)
}
