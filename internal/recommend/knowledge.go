package recommend

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SkillKnowledge describes one skill's relationships: which skills usually
// follow it, how many days its output stays fresh (0 = never goes stale),
// and its category (staleness in the "knowledge" category is ranked high).
type SkillKnowledge struct {
	Suggests       []string `yaml:"suggests,omitempty"`
	StaleAfterDays int      `yaml:"staleAfterDays,omitempty"`
	Category       string   `yaml:"category"`
}

// Knowledge maps skill names to their relationship entries.
type Knowledge map[string]SkillKnowledge

// FoundationalSkills are recommended for any project that has never run them.
var FoundationalSkills = []string{"shipkit-project-context", "shipkit-project-status"}

// DefaultKnowledge returns the built-in skill relationship table.
func DefaultKnowledge() Knowledge {
	return Knowledge{
		"shipkit-spec": {
			Suggests:       []string{"shipkit-plan", "shipkit-architecture-memory"},
			StaleAfterDays: 14,
			Category:       "planning",
		},
		"shipkit-plan": {
			Suggests:       []string{"shipkit-build-relentlessly", "shipkit-implement-independently"},
			StaleAfterDays: 7,
			Category:       "planning",
		},
		"shipkit-project-context": {
			Suggests:       []string{"shipkit-codebase-index", "shipkit-project-status"},
			StaleAfterDays: 30,
			Category:       "discovery",
		},
		"shipkit-project-status": {
			Suggests:       []string{"shipkit-spec", "shipkit-plan"},
			StaleAfterDays: 7,
			Category:       "discovery",
		},
		"shipkit-architecture-memory": {
			StaleAfterDays: 14,
			Category:       "knowledge",
		},
		"shipkit-work-memory": {
			StaleAfterDays: 1,
			Category:       "knowledge",
		},
		"shipkit-data-contracts": {
			StaleAfterDays: 14,
			Category:       "knowledge",
		},
		"shipkit-build-relentlessly": {
			Suggests: []string{"shipkit-test-relentlessly", "shipkit-verify"},
			Category: "execution",
		},
		"shipkit-test-relentlessly": {
			Suggests: []string{"shipkit-verify", "shipkit-preflight"},
			Category: "execution",
		},
		"shipkit-verify": {
			Suggests:       []string{"shipkit-preflight"},
			StaleAfterDays: 3,
			Category:       "quality",
		},
		"shipkit-preflight": {
			StaleAfterDays: 7,
			Category:       "quality",
		},
	}
}

// LoadKnowledge reads a YAML knowledge table from path. Entries replace the
// built-in table wholesale.
func LoadKnowledge(path string) (Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge file: %w", err)
	}
	var k Knowledge
	if err := yaml.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parsing knowledge file %s: %w", path, err)
	}
	if len(k) == 0 {
		return nil, fmt.Errorf("knowledge file %s contains no entries", path)
	}
	return k, nil
}
