package render

import (
	"strings"
	"time"
)

// placeholder renders in place of any absent value. Absence is never an
// error; the template drives the document shape regardless of which
// responses exist.
const placeholder = "–"

// answerKind classifies a checklist value for semantic coloring.
type answerKind int

const (
	answerOther answerKind = iota
	answerAffirmative
	answerNegative
	answerNotApplicable
)

var affirmativeValues = map[string]bool{
	"sim": true, "yes": true, "ok": true, "conforme": true, "aprovado": true, "true": true,
}

var negativeValues = map[string]bool{
	"não": true, "nao": true, "no": true, "não conforme": true, "nao conforme": true,
	"reprovado": true, "false": true,
}

var notApplicableValues = map[string]bool{
	"n/a": true, "na": true, "não aplicável": true, "nao aplicavel": true, "not applicable": true,
}

func classifyAnswer(value string) answerKind {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case affirmativeValues[v]:
		return answerAffirmative
	case negativeValues[v]:
		return answerNegative
	case notApplicableValues[v]:
		return answerNotApplicable
	}
	return answerOther
}

var (
	colorAffirmative   = [3]int{46, 125, 50}
	colorNegative      = [3]int{183, 28, 28}
	colorNotApplicable = [3]int{120, 120, 120}
	colorExpiring      = [3]int{230, 145, 0}
	fillAlternate      = [3]int{240, 242, 245}
	fillNonConforming  = [3]int{250, 230, 230}
	fillSectionHeader  = [3]int{225, 230, 238}
)

func answerColor(kind answerKind) [3]int {
	switch kind {
	case answerAffirmative:
		return colorAffirmative
	case answerNegative:
		return colorNegative
	case answerNotApplicable:
		return colorNotApplicable
	}
	return [3]int{0, 0, 0}
}

// cleanValue strips stray array-literal punctuation that some mobile
// clients persist around multi-select values, e.g. `["22.5"]` -> `22.5`.
func cleanValue(value string) string {
	v := strings.TrimSpace(value)
	if len(v) < 2 || v[0] != '[' || v[len(v)-1] != ']' {
		return v
	}
	inner := v[1 : len(v)-1]
	parts := strings.Split(inner, ",")
	cleaned := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"'`)
		if p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, ", ")
}

// orPlaceholder substitutes the placeholder glyph for blank values.
func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format("02/01/2006")
}

func formatDateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format("02/01/2006 15:04")
}
