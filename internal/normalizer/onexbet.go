package normalizer

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// 1xBet line feed group codes.
const (
	gCode1X2           = 1
	gCodeHandicap      = 2
	gCodeDoubleChance  = 8
	gCodeHomeTeamTotal = 15
	gCodeTotal         = 17
	gCodeBTTS          = 19
	gCodeAwayTeamTotal = 62
	gCodeAsianHandicap = 2854
)

// SubGameSegments maps 1xBet sub-game titles to segment names.
//
//nolint:gochecknoglobals
var SubGameSegments = map[string]string{
	"Corners":   types.SegmentCorners,
	"Offsides":  types.SegmentOffsides,
	"Throw-ins": types.SegmentThrowIns,
}

type oneXBetPayload struct {
	Success *bool         `json:"Success"`
	Value   *oneXBetValue `json:"Value"`
}

type oneXBetValue struct {
	CI int64             `json:"CI"`
	O1 string            `json:"O1"`
	O2 string            `json:"O2"`
	L  string            `json:"L"`
	S  int64             `json:"S"`
	SG []oneXBetSubGame  `json:"SG"`
	GE []json.RawMessage `json:"GE"`
}

type oneXBetSubGame struct {
	CI int64  `json:"CI"`
	TG string `json:"TG"`
}

type oneXBetGroup struct {
	G int               `json:"G"`
	E [][]oneXBetOption `json:"E"`
}

type oneXBetOption struct {
	C flexFloat  `json:"C"`
	P *flexFloat `json:"P"`
}

// SubGameRef identifies a segment sub-game to fetch separately.
type SubGameRef struct {
	ID      string
	Segment string
}

// OneXBet normalizes 1xBet line feed payloads (GetGameZip). Melbet serves the
// same feed.
type OneXBet struct {
	source string
	logger *zap.Logger
}

// NewOneXBet creates a 1xBet feed normalizer reporting as source.
func NewOneXBet(source string, logger ...*zap.Logger) *OneXBet {
	l := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	}

	return &OneXBet{source: source, logger: l}
}

// Source returns the source id this normalizer reports.
func (n *OneXBet) Source() string {
	return n.source
}

// Normalize decodes a main game payload.
func (n *OneXBet) Normalize(fixtureRef string, payload []byte) (*types.OddsBook, error) {
	v, err := decodeOneXBet(payload)
	if err != nil {
		return nil, err
	}

	if fixtureRef == "" && v.CI != 0 {
		fixtureRef = strconv.FormatInt(v.CI, 10)
	}

	book := types.NewOddsBook(n.source, fixtureRef)
	book.HomeTeam = CleanName(v.O1)
	book.AwayTeam = CleanName(v.O2)
	book.League = CleanName(v.L)
	if v.S > 0 {
		book.StartTime = time.Unix(v.S, 0).UTC()
	}

	n.apply(v, "", book)

	return book, nil
}

// NormalizeSubGame decodes a segment sub-game payload into base's book.
// Markets are keyed "<segment> - <market>" and team names come from base.
func (n *OneXBet) NormalizeSubGame(base *types.OddsBook, segment string, payload []byte) error {
	v, err := decodeOneXBet(payload)
	if err != nil {
		return err
	}

	n.apply(v, segment, base)

	return nil
}

// SubGameRefs lists the segment sub-games of a main game payload.
func (n *OneXBet) SubGameRefs(payload []byte) ([]SubGameRef, error) {
	v, err := decodeOneXBet(payload)
	if err != nil {
		return nil, err
	}

	var refs []SubGameRef
	for _, sg := range v.SG {
		segment, ok := SubGameSegments[sg.TG]
		if !ok || sg.CI == 0 {
			continue
		}
		refs = append(refs, SubGameRef{ID: strconv.FormatInt(sg.CI, 10), Segment: segment})
	}

	return refs, nil
}

func decodeOneXBet(payload []byte) (*oneXBetValue, error) {
	var p oneXBetPayload
	err := json.Unmarshal(payload, &p)
	if err != nil {
		return nil, fmt.Errorf("decode 1xbet payload: %w", err)
	}

	if p.Value == nil || (p.Success != nil && !*p.Success) {
		return nil, types.ErrEmptyPayload
	}

	return p.Value, nil
}

func (n *OneXBet) apply(v *oneXBetValue, segment string, book *types.OddsBook) {
	key := func(market string) string {
		if segment == "" {
			return market
		}
		return types.SegmentMarket(segment, market)
	}

	t := teams{home: book.HomeTeam, away: book.AwayTeam}
	seen := make(map[int]bool, len(v.GE))

	for _, raw := range v.GE {
		var g oneXBetGroup
		if err := json.Unmarshal(raw, &g); err != nil {
			n.logger.Debug("1xbet-group-skipped", zap.String("source", n.source), zap.Error(err))
			continue
		}

		// the feed may repeat a group code; the first occurrence is the main line
		if seen[g.G] {
			continue
		}
		seen[g.G] = true

		switch g.G {
		case gCode1X2:
			setColumns(book, key(types.Market1X2), g, types.OutcomeW1, types.OutcomeX, types.OutcomeW2)
		case gCodeDoubleChance:
			if segment == "" {
				setColumns(book, key(types.MarketDoubleChance), g, types.Outcome1X, types.Outcome12, types.OutcomeX2)
			}
		case gCodeBTTS:
			if segment == "" {
				setColumns(book, key(types.MarketBTTS), g, types.OutcomeYes, types.OutcomeNo)
			}
		case gCodeTotal:
			setTotals(book, key(types.MarketTotal), g)
		case gCodeHomeTeamTotal:
			setTotals(book, key(types.MarketHomeTeamTotal), g)
		case gCodeAwayTeamTotal:
			setTotals(book, key(types.MarketAwayTeamTotal), g)
		case gCodeHandicap:
			setHandicaps(book, key(types.MarketHandicap), g, t)
		case gCodeAsianHandicap:
			if segment == "" {
				setHandicaps(book, key(types.MarketAsianHandicap), g, t)
			}
		}
	}
}

// setColumns reads the first option of each column as one labelled outcome.
func setColumns(book *types.OddsBook, market string, g oneXBetGroup, labels ...string) {
	for i, label := range labels {
		if i >= len(g.E) || len(g.E[i]) == 0 {
			continue
		}
		book.Set(market, label, float64(g.E[i][0].C))
	}
}

// setTotals reads column 0 as overs and column 1 as unders. Options without a
// line are skipped.
func setTotals(book *types.OddsBook, market string, g oneXBetGroup) {
	if len(g.E) < 2 {
		return
	}

	for col, label := range []func(string) string{types.TotalOver, types.TotalUnder} {
		for _, o := range g.E[col] {
			if o.P == nil || *o.P == 0 {
				continue
			}
			book.Set(market, label(formatLine(float64(*o.P))), float64(o.C))
		}
	}
}

// setHandicaps reads column 0 as home and column 1 as away handicaps. A
// missing value is a level handicap.
func setHandicaps(book *types.OddsBook, market string, g oneXBetGroup, t teams) {
	if len(g.E) < 2 {
		return
	}

	for col, side := range []int{1, 2} {
		for _, o := range g.E[col] {
			value := 0.0
			if o.P != nil {
				value = float64(*o.P)
			}
			book.Set(market, types.HandicapLabel(t.name(side), formatLine(value)), float64(o.C))
		}
	}
}
