package normalizer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/pkg/types"
)

type mostbetPayload struct {
	Line *struct {
		ID    int64 `json:"id"`
		Match *struct {
			Title   string `json:"title"`
			BeginAt int64  `json:"begin_at"`
			Team1   struct {
				Title string `json:"title"`
			} `json:"team1"`
			Team2 struct {
				Title string `json:"title"`
			} `json:"team2"`
		} `json:"match"`
	} `json:"line"`
	LineSubcategory struct {
		Title string `json:"title"`
	} `json:"line_subcategory"`
	Markets       []json.RawMessage `json:"markets"`
	OutcomeGroups []json.RawMessage `json:"outcome_groups"`
	Outcomes      []json.RawMessage `json:"outcomes"`
}

type mostbetMarket struct {
	Title  string  `json:"title"`
	Groups []int64 `json:"groups"`
}

type mostbetGroup struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	Outcomes []mostbetOutcome `json:"outcomes"`
}

type mostbetOutcome struct {
	TypeTitle string    `json:"type_title"`
	Odd       flexFloat `json:"odd"`
	Alias     string    `json:"alias"`
}

// mostbetLine is the decoded payload with malformed entries dropped.
type mostbetLine struct {
	markets  []mostbetMarket
	groups   []mostbetGroup
	outcomes []mostbetOutcome
	byID     map[int64]*mostbetGroup
}

// Mostbet normalizes Mostbet line payloads (/api/v1/lines/{id}.json).
type Mostbet struct {
	logger *zap.Logger
}

// MostbetOption configures a Mostbet normalizer.
type MostbetOption func(*Mostbet)

// WithMostbetLogger logs skipped entries at debug level.
func WithMostbetLogger(logger *zap.Logger) MostbetOption {
	return func(m *Mostbet) {
		m.logger = logger
	}
}

// NewMostbet creates a Mostbet normalizer.
func NewMostbet(opts ...MostbetOption) *Mostbet {
	m := &Mostbet{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Source returns types.SourceMostbet.
func (m *Mostbet) Source() string {
	return types.SourceMostbet
}

// Normalize decodes a Mostbet line payload and applies the market rules.
func (m *Mostbet) Normalize(fixtureRef string, payload []byte) (*types.OddsBook, error) {
	var p mostbetPayload
	err := json.Unmarshal(payload, &p)
	if err != nil {
		return nil, fmt.Errorf("decode mostbet payload: %w", err)
	}

	if p.Line == nil || p.Line.Match == nil {
		return nil, types.ErrEmptyPayload
	}

	if fixtureRef == "" && p.Line.ID != 0 {
		fixtureRef = strconv.FormatInt(p.Line.ID, 10)
	}

	book := types.NewOddsBook(types.SourceMostbet, fixtureRef)
	book.HomeTeam = CleanName(p.Line.Match.Team1.Title)
	book.AwayTeam = CleanName(p.Line.Match.Team2.Title)
	book.League = CleanName(p.LineSubcategory.Title)
	if p.Line.Match.BeginAt > 0 {
		book.StartTime = time.Unix(p.Line.Match.BeginAt, 0).UTC()
	}

	line := m.decodeLine(&p)
	t := teams{home: book.HomeTeam, away: book.AwayTeam}

	for _, r := range mostbetRules {
		r.apply(line, t, book)
	}

	m.logger.Debug("mostbet-payload-normalized",
		zap.String("fixture-ref", fixtureRef),
		zap.Int("market-count", len(book.Markets)),
		zap.Int("outcome-count", book.OutcomeCount()))

	return book, nil
}

func (m *Mostbet) decodeLine(p *mostbetPayload) *mostbetLine {
	line := &mostbetLine{byID: make(map[int64]*mostbetGroup, len(p.OutcomeGroups))}

	for _, raw := range p.Markets {
		var mk mostbetMarket
		if err := json.Unmarshal(raw, &mk); err != nil {
			m.logger.Debug("mostbet-market-skipped", zap.Error(err))
			continue
		}
		line.markets = append(line.markets, mk)
	}

	for _, raw := range p.OutcomeGroups {
		var g mostbetGroup
		if err := json.Unmarshal(raw, &g); err != nil {
			m.logger.Debug("mostbet-outcome-group-skipped", zap.Error(err))
			continue
		}
		line.groups = append(line.groups, g)
	}
	for i := range line.groups {
		line.byID[line.groups[i].ID] = &line.groups[i]
	}

	for _, raw := range p.Outcomes {
		var o mostbetOutcome
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		line.outcomes = append(line.outcomes, o)
	}

	return line
}

// marketGroups returns the groups listed under the market titled title.
func (l *mostbetLine) marketGroups(title string) []*mostbetGroup {
	var out []*mostbetGroup
	for _, mk := range l.markets {
		if !strings.EqualFold(mk.Title, title) {
			continue
		}
		for _, id := range mk.Groups {
			if g, ok := l.byID[id]; ok {
				out = append(out, g)
			}
		}
	}

	return out
}
