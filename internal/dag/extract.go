package dag

import (
	"regexp"
	"strconv"
	"strings"
)

// Dependency is one reference extracted from an annotation.
type Dependency struct {
	Target      int
	Description string
}

// refPattern matches "(#10)" and the slash-paired form "(#19/#21)".
var refPattern = regexp.MustCompile(`\(\s*#(\d+)(?:\s*/\s*#(\d+))?\s*\)`)

// arrowPattern matches the separator tokens authors use between clauses.
var arrowPattern = regexp.MustCompile(`→|⇒|->|=>`)

// ParseDependencies scans annotation text for bracketed item references and
// returns one Dependency per referenced ID. A slash-paired reference yields
// two dependencies sharing a description. The description is the clause
// preceding the reference, starting after the nearest arrow separator or
// at the start of the text when no arrow precedes it. Earlier references
// without an arrow between them stay part of the clause. Text without
// references yields nil.
func ParseDependencies(text string) []Dependency {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	matches := refPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	arrows := arrowPattern.FindAllStringIndex(text, -1)
	seen := make(map[int]bool)
	var deps []Dependency
	for _, m := range matches {
		start := 0
		for _, a := range arrows {
			if a[1] <= m[0] && a[1] > start {
				start = a[1]
			}
		}
		desc := strings.Trim(text[start:m[0]], " \t\r\n,;:")

		// Submatch groups 1 and 2 hold the first and optional second ID.
		for g := 1; g <= 2; g++ {
			lo, hi := m[2*g], m[2*g+1]
			if lo < 0 {
				continue
			}
			id, err := strconv.Atoi(text[lo:hi])
			if err != nil || seen[id] {
				continue
			}
			seen[id] = true
			deps = append(deps, Dependency{Target: id, Description: desc})
		}
	}
	return deps
}
