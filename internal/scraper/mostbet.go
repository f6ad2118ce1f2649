package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/normalizer"
	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	mostbetPageSize = 20
	// mostbetMaxPages bounds pagination if the API keeps answering.
	mostbetMaxPages = 200
)

// MostbetClient fetches the Mostbet football line.
type MostbetClient struct {
	fetcher    *Fetcher
	normalizer *normalizer.Mostbet
	pageDelay  time.Duration
	logger     *zap.Logger
}

// MostbetConfig holds Mostbet client configuration.
type MostbetConfig struct {
	Fetcher   *Fetcher
	PageDelay time.Duration
	Logger    *zap.Logger
}

// NewMostbetClient creates a Mostbet client.
func NewMostbetClient(cfg *MostbetConfig) *MostbetClient {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MostbetClient{
		fetcher:    cfg.Fetcher,
		normalizer: normalizer.NewMostbet(normalizer.WithMostbetLogger(logger)),
		pageDelay:  cfg.PageDelay,
		logger:     logger,
	}
}

// Name returns the source id.
func (c *MostbetClient) Name() string {
	return types.SourceMostbet
}

type mostbetListPage struct {
	LinesHierarchy []struct {
		Categories []struct {
			Title           string `json:"title"`
			Supercategories []struct {
				Subcategories []mostbetSubcategory `json:"line_subcategory_dto_collection"`
			} `json:"line_supercategory_dto_collection"`
		} `json:"line_category_dto_collection"`
	} `json:"lines_hierarchy"`
}

type mostbetSubcategory struct {
	ID       flexID `json:"id"`
	TitleOld string `json:"title_old"`
	Lines    []struct {
		ID    flexID `json:"id"`
		Match *struct {
			Title   string `json:"title"`
			BeginAt int64  `json:"begin_at"`
		} `json:"match"`
	} `json:"line_dto_collection"`
}

// FetchFixtures pages through the line list until a page is empty.
func (c *MostbetClient) FetchFixtures(ctx context.Context) ([]types.RawFixture, error) {
	var fixtures []types.RawFixture

	for page := range mostbetMaxPages {
		offset := page * mostbetPageSize

		body, err := c.fetcher.Get(ctx, mostbetListPath(offset))
		if err != nil {
			return nil, fmt.Errorf("fetch mostbet line list at offset %d: %w", offset, err)
		}

		var p mostbetListPage
		err = json.Unmarshal(body, &p)
		if err != nil {
			return nil, fmt.Errorf("decode mostbet line list: %w", err)
		}

		found := extractMostbetFixtures(&p)
		if len(p.LinesHierarchy) == 0 || len(found) == 0 {
			c.logger.Debug("mostbet-pagination-complete",
				zap.Int("offset", offset),
				zap.Int("fixture-count", len(fixtures)))
			break
		}

		fixtures = append(fixtures, found...)
		c.logger.Debug("mostbet-page-fetched",
			zap.Int("offset", offset),
			zap.Int("page-fixtures", len(found)),
			zap.Int("total", len(fixtures)))

		err = sleepCtx(ctx, c.pageDelay)
		if err != nil {
			return nil, fmt.Errorf("wait between pages: %w", err)
		}
	}

	FixturesFetchedTotal.WithLabelValues(types.SourceMostbet).Add(float64(len(fixtures)))

	return fixtures, nil
}

func mostbetListPath(offset int) string {
	q := url.Values{}
	q.Set("t[]", "1")
	q.Set("lc[]", "1")
	q.Set("um", "12")
	q.Set("ss", "all")
	q.Set("l", strconv.Itoa(mostbetPageSize))
	q.Set("of", strconv.Itoa(offset))
	q.Set("ltr", "0")

	return "/api/v3/user/line/list?" + q.Encode()
}

func extractMostbetFixtures(p *mostbetListPage) []types.RawFixture {
	var out []types.RawFixture

	for _, h := range p.LinesHierarchy {
		for _, cat := range h.Categories {
			sport := cat.Title
			if sport == "" {
				sport = "Football"
			}

			for _, sup := range cat.Supercategories {
				for _, sub := range sup.Subcategories {
					for _, line := range sub.Lines {
						if line.Match == nil {
							continue
						}

						home, away, _ := strings.Cut(line.Match.Title, " - ")
						f := types.RawFixture{
							SourceID:   string(line.ID),
							Source:     types.SourceMostbet,
							HomeTeam:   normalizer.CleanName(home),
							AwayTeam:   normalizer.CleanName(away),
							LeagueID:   string(sub.ID),
							LeagueName: normalizer.CleanName(sub.TitleOld),
							Sport:      sport,
						}
						if line.Match.BeginAt > 0 {
							f.StartTime = time.Unix(line.Match.BeginAt, 0).UTC()
						}
						out = append(out, f)
					}
				}
			}
		}
	}

	return out
}

// FetchOddsPayload returns the raw line payload for a fixture.
func (c *MostbetClient) FetchOddsPayload(ctx context.Context, fixtureID string) ([]byte, error) {
	body, err := c.fetcher.Get(ctx, "/api/v1/lines/"+url.PathEscape(fixtureID)+".json")
	if err != nil {
		return nil, fmt.Errorf("fetch mostbet line %s: %w", fixtureID, err)
	}

	return body, nil
}

// FetchOdds fetches and normalizes the odds of one fixture.
func (c *MostbetClient) FetchOdds(ctx context.Context, fixtureID string) (*types.OddsBook, error) {
	body, err := c.FetchOddsPayload(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	book, err := c.normalizer.Normalize(fixtureID, body)
	if err != nil {
		return nil, fmt.Errorf("normalize mostbet line %s: %w", fixtureID, err)
	}

	return book, nil
}
