package ingredient

import (
	"regexp"
	"strings"
)

// Modifiers are descriptive words stripped before ingredient comparison.
var Modifiers = []string{
	"fresh", "frozen", "dried", "chopped", "diced", "sliced",
	"minced", "shredded", "grated", "cooked", "raw", "large",
	"small", "medium", "whole", "ground", "canned",
}

// Whole words only, so "groundnut" keeps its name.
var modifierPattern = regexp.MustCompile(`\b(?:` + strings.Join(Modifiers, "|") + `)\b`)

// Normalize maps a raw ingredient name to its canonical comparison form:
// lower-cased, modifiers removed, whitespace collapsed.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = modifierPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
