// Package conflict classifies a case's free-text conflict notes into a small
// set of annotation categories. Classification is display-only and never
// affects scheduling.
package conflict

import (
	"strings"

	"or-schedule-backend/internal/model"
)

// Category identifies one kind of schedule annotation.
type Category string

const (
	CategoryPACU            Category = "pacu"
	CategorySpecialResource Category = "special_resource"
	CategoryHighRisk        Category = "high_risk"
)

// HighRiskLabel is the fixed text attached to the standalone high-risk flag,
// which is derived from the case's risk field rather than a conflict note.
const HighRiskLabel = "High Risk Case"

var specialKeywords = []string{"special", "mri", "perfusionist", "tech", "equipment"}

// Icon is one annotation for a case: the category plus the conflict text
// that triggered it.
type Icon struct {
	Category   Category `json:"category"`
	SourceText string   `json:"sourceText"`
}

// Classify scans a case's conflicts and emits at most one icon per category,
// PACU before special resource. The first conflict containing "pacu" wins the
// PACU slot and the first containing a special-resource keyword wins the
// special-resource slot, both case-insensitively. A high-risk case with no
// PACU icon additionally gets a standalone high-risk flag.
func Classify(c model.Case) []Icon {
	var icons []Icon
	hasPACU := false

	for _, text := range c.Conflicts {
		if strings.Contains(strings.ToLower(text), "pacu") {
			icons = append(icons, Icon{Category: CategoryPACU, SourceText: text})
			hasPACU = true
			break
		}
	}
	for _, text := range c.Conflicts {
		if containsAny(strings.ToLower(text), specialKeywords) {
			icons = append(icons, Icon{Category: CategorySpecialResource, SourceText: text})
			break
		}
	}

	if c.Risk == model.RiskHigh && !hasPACU {
		icons = append(icons, Icon{Category: CategoryHighRisk, SourceText: HighRiskLabel})
	}
	return icons
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
