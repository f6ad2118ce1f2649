package types

import (
	"fmt"
	"strings"
	"time"
)

// Source identifiers for the supported bookmakers.
const (
	SourceMostbet = "mostbet"
	SourceMelbet  = "melbet"
)

// RawFixture is a single upcoming match as listed by one bookmaker.
type RawFixture struct {
	SourceID   string    `json:"sourceId"`
	Source     string    `json:"source"`
	HomeTeam   string    `json:"homeTeam"`
	AwayTeam   string    `json:"awayTeam"`
	LeagueID   string    `json:"leagueId,omitempty"`
	LeagueName string    `json:"leagueName,omitempty"`
	Sport      string    `json:"sport,omitempty"`
	StartTime  time.Time `json:"startTime"`
}

// Valid reports whether the fixture carries the fields the matcher needs.
func (f RawFixture) Valid() bool {
	return f.SourceID != "" &&
		strings.TrimSpace(f.HomeTeam) != "" &&
		strings.TrimSpace(f.AwayTeam) != "" &&
		!f.StartTime.IsZero()
}

func (f RawFixture) String() string {
	return fmt.Sprintf("%s:%s %s vs %s", f.Source, f.SourceID, f.HomeTeam, f.AwayTeam)
}

// MatchedFixturePair links the same real-world match listed by two bookmakers.
type MatchedFixturePair struct {
	FixtureA         RawFixture `json:"fixtureA"`
	FixtureB         RawFixture `json:"fixtureB"`
	SimilarityScore  float64    `json:"similarityScore"`
	IsTeamsReversed  bool       `json:"isTeamsReversed"`
	TimeDeltaMinutes float64    `json:"timeDeltaMinutes"`
}

// Key identifies the pair by both source ids.
func (p MatchedFixturePair) Key() string {
	return fmt.Sprintf("%s:%s|%s:%s", p.FixtureA.Source, p.FixtureA.SourceID, p.FixtureB.Source, p.FixtureB.SourceID)
}
