package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/selector.txt
	selectorRaw string

	//go:embed template/pitch.txt
	pitchRaw string

	//go:embed template/summary.txt
	summaryRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Selector string
	Pitch    string
	Summary  string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Selector: strings.TrimSpace(selectorRaw),
		Pitch:    strings.TrimSpace(pitchRaw),
		Summary:  strings.TrimSpace(summaryRaw),
	}
}
