package normalizer

import (
	"regexp"
	"strings"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// teams carries the display names used in handicap labels.
type teams struct {
	home string
	away string
}

func (t teams) name(side int) string {
	if side == 1 {
		if t.home != "" {
			return t.home
		}
		return types.OutcomeTeam1
	}
	if t.away != "" {
		return t.away
	}

	return types.OutcomeTeam2
}

// extractor maps one raw outcome title (and alias) to a canonical label.
type extractor func(title, alias string, t teams) (string, bool)

//nolint:gochecknoglobals
var (
	parenLineRe     = regexp.MustCompile(`\((\d+(?:\.\d+)?)\)`)
	bareLineRe      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	parenSignedRe   = regexp.MustCompile(`\(([+-]?\d+(?:\.\d+)?)\)`)
	explicitSignRe  = regexp.MustCompile(`[+-]\d+(?:\.\d+)?`)
	handicapTeamRe  = regexp.MustCompile(`(?i)handi[cс]ap\s+([12])\b`)
	namedTeamSideRe = regexp.MustCompile(`(?i)\b(team 1|team 2|home|away)\b`)
)

// labels maps exact titles or aliases to canonical labels.
func labels(m map[string]string) extractor {
	return func(title, alias string, _ teams) (string, bool) {
		if label, ok := m[strings.TrimSpace(title)]; ok {
			return label, true
		}
		if alias != "" {
			label, ok := m[strings.TrimSpace(alias)]
			return label, ok
		}

		return "", false
	}
}

//nolint:gochecknoglobals
var (
	threeWay = labels(map[string]string{
		"W1": types.OutcomeW1,
		"X":  types.OutcomeX,
		"Х":  types.OutcomeX, // Cyrillic
		"W2": types.OutcomeW2,
	})

	twoWay = labels(map[string]string{
		"W1": types.OutcomeW1,
		"1":  types.OutcomeW1,
		"W2": types.OutcomeW2,
		"2":  types.OutcomeW2,
	})

	doubleChance = labels(map[string]string{
		"1X": types.Outcome1X,
		"12": types.Outcome12,
		"X2": types.OutcomeX2,
		"2X": types.OutcomeX2,
	})

	yesNo = labels(map[string]string{
		"Yes": types.OutcomeYes,
		"yes": types.OutcomeYes,
		"No":  types.OutcomeNo,
		"no":  types.OutcomeNo,
	})

	firstLast = labels(map[string]string{
		"Team 1":   types.OutcomeTeam1,
		"W1":       types.OutcomeTeam1,
		"1":        types.OutcomeTeam1,
		"Team 2":   types.OutcomeTeam2,
		"W2":       types.OutcomeTeam2,
		"2":        types.OutcomeTeam2,
		"No Event": types.OutcomeNoEvent,
		"No Goal":  types.OutcomeNoEvent,
		"None":     types.OutcomeNoEvent,
		"Neither":  types.OutcomeNoEvent,
	})
)

// totalsOpts configures the over/under extractor.
type totalsOpts struct {
	// anyOf lists substrings of which one must appear in the title
	// (case-insensitive) when set.
	anyOf []string
	// exclude rejects titles containing any of these words (case-insensitive).
	exclude []string
	// bare accepts a line printed without parentheses.
	bare bool
}

// totals reads "Total Over (2.5)", "Total (2.5) Under", "Asian Total (2.25) Over"
// and, with bare set, "Over 1.5" into Total Over/Under labels.
func totals(opts totalsOpts) extractor {
	return func(title, _ string, _ teams) (string, bool) {
		lower := strings.ToLower(title)
		if len(opts.anyOf) > 0 && !containsAny(lower, opts.anyOf) {
			return "", false
		}
		if containsAny(lower, opts.exclude) {
			return "", false
		}

		over := strings.Contains(lower, "over")
		under := strings.Contains(lower, "under")
		if over == under {
			return "", false
		}

		var line string
		if m := parenLineRe.FindStringSubmatch(title); m != nil {
			line = m[1]
		} else if opts.bare {
			line = bareLineRe.FindString(title)
		}
		if line == "" {
			return "", false
		}

		if over {
			return types.TotalOver(line), true
		}

		return types.TotalUnder(line), true
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}

	return false
}

// handicapOpts configures the handicap extractor.
type handicapOpts struct {
	// fallback is used when the title carries no value, e.g. "Handicap 1".
	// Empty means such outcomes are skipped.
	fallback string
}

// handicap reads "Handicap 1 (-1.5)", "Asian handicap 2 +0.75", "Team 1 (+2)"
// or "Home -1.5" into "<team name> (<value>)".
func handicap(opts handicapOpts) extractor {
	return func(title, _ string, t teams) (string, bool) {
		side := handicapSide(title)
		if side == 0 {
			return "", false
		}

		value := opts.fallback
		if m := parenSignedRe.FindStringSubmatch(title); m != nil {
			value = m[1]
		} else if v := explicitSignRe.FindString(title); v != "" {
			value = v
		}
		if value == "" {
			return "", false
		}

		return types.HandicapLabel(t.name(side), value), true
	}
}

func handicapSide(title string) int {
	if m := handicapTeamRe.FindStringSubmatch(title); m != nil {
		if m[1] == "1" {
			return 1
		}
		return 2
	}

	if m := namedTeamSideRe.FindStringSubmatch(title); m != nil {
		switch strings.ToLower(m[1]) {
		case "team 1", "home":
			return 1
		default:
			return 2
		}
	}

	return 0
}
