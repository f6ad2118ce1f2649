package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mselser95/bookie-arb/internal/normalizer"
	"github.com/mselser95/bookie-arb/pkg/types"
)

const (
	melbetLeagueBatch       = 5
	melbetSubGameWorkers    = 3
	melbetFixturesPerLeague = 50
)

// MelbetClient fetches the Melbet football line. League ids come from the
// site API; fixtures and odds come from the 1xBet line feed it embeds.
type MelbetClient struct {
	site       *Fetcher
	feed       *Fetcher
	normalizer *normalizer.OneXBet
	batchDelay time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// MelbetConfig holds Melbet client configuration.
type MelbetConfig struct {
	Site       *Fetcher
	Feed       *Fetcher
	BatchDelay time.Duration
	Now        func() time.Time
	Logger     *zap.Logger
}

// NewMelbetClient creates a Melbet client.
func NewMelbetClient(cfg *MelbetConfig) *MelbetClient {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &MelbetClient{
		site:       cfg.Site,
		feed:       cfg.Feed,
		normalizer: normalizer.NewOneXBet(types.SourceMelbet, logger),
		batchDelay: cfg.BatchDelay,
		now:        now,
		logger:     logger,
	}
}

// Name returns the source id.
func (c *MelbetClient) Name() string {
	return types.SourceMelbet
}

type melbetSportsResponse struct {
	Value []struct {
		L []struct {
			LI int64 `json:"LI"`
			SC []struct {
				LI int64 `json:"LI"`
			} `json:"SC"`
		} `json:"L"`
	} `json:"Value"`
}

type melbetGamesResponse struct {
	Success bool         `json:"Success"`
	Value   []melbetGame `json:"Value"`
}

type melbetGame struct {
	CI  int64  `json:"CI"`
	O1E string `json:"O1E"`
	O2E string `json:"O2E"`
	LI  int64  `json:"LI"`
	LE  string `json:"LE"`
	SN  string `json:"SN"`
	S   int64  `json:"S"`
}

// Window returns the listing window: today 18:30 UTC to tomorrow 18:30 UTC.
func Window(now time.Time) (from, to time.Time) {
	now = now.UTC()
	from = time.Date(now.Year(), now.Month(), now.Day(), 18, 30, 0, 0, time.UTC)

	return from, from.AddDate(0, 0, 1)
}

// FetchFixtures lists the leagues in the current window, then fetches their
// fixtures in batches. Failed leagues are logged and skipped.
func (c *MelbetClient) FetchFixtures(ctx context.Context) ([]types.RawFixture, error) {
	leagueIDs, err := c.fetchLeagueIDs(ctx)
	if err != nil {
		return nil, err
	}
	if len(leagueIDs) == 0 {
		c.logger.Warn("melbet-no-leagues")
		return nil, nil
	}

	var (
		fixtures []types.RawFixture
		seen     = make(map[int64]bool)
	)

	for start := 0; start < len(leagueIDs); start += melbetLeagueBatch {
		batch := leagueIDs[start:min(start+melbetLeagueBatch, len(leagueIDs))]
		results := make([][]melbetGame, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		for i, id := range batch {
			g.Go(func() error {
				games, err := c.fetchLeagueGames(gctx, id)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					c.logger.Warn("melbet-league-fetch-failed",
						zap.Int64("league-id", id),
						zap.Error(err))
					return nil
				}
				results[i] = games
				return nil
			})
		}

		err = g.Wait()
		if err != nil {
			return nil, fmt.Errorf("fetch melbet leagues: %w", err)
		}

		// Merge in league order so a fixture listed by several leagues keeps
		// the first league's record.
		for _, games := range results {
			for _, game := range games {
				if f, ok := melbetFixture(game, seen); ok {
					fixtures = append(fixtures, f)
				}
			}
		}

		if start+melbetLeagueBatch < len(leagueIDs) {
			err = sleepCtx(ctx, c.batchDelay)
			if err != nil {
				return nil, fmt.Errorf("wait between batches: %w", err)
			}
		}
	}

	FixturesFetchedTotal.WithLabelValues(types.SourceMelbet).Add(float64(len(fixtures)))
	c.logger.Debug("melbet-fixtures-fetched",
		zap.Int("league-count", len(leagueIDs)),
		zap.Int("fixture-count", len(fixtures)))

	return fixtures, nil
}

func (c *MelbetClient) fetchLeagueIDs(ctx context.Context) ([]int64, error) {
	from, to := Window(c.now())

	q := url.Values{}
	q.Set("sports", "1")
	q.Set("lng", "en")
	q.Set("country", "71")
	q.Set("partner", "8")
	q.Set("virtualSports", "true")
	q.Set("gr", "1182")
	q.Set("groupChamps", "true")
	q.Set("tsFrom", strconv.FormatInt(from.Unix(), 10))
	q.Set("tsTo", strconv.FormatInt(to.Unix(), 10))

	body, err := c.site.Get(ctx, "/service-api/LineFeed/GetSportsShortZip?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("fetch melbet leagues: %w", err)
	}

	var resp melbetSportsResponse
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return nil, fmt.Errorf("decode melbet leagues: %w", err)
	}

	var ids []int64
	for _, sport := range resp.Value {
		for _, league := range sport.L {
			if league.LI != 0 {
				ids = append(ids, league.LI)
			}
			for _, sub := range league.SC {
				if sub.LI != 0 {
					ids = append(ids, sub.LI)
				}
			}
		}
	}

	return ids, nil
}

func (c *MelbetClient) fetchLeagueGames(ctx context.Context, leagueID int64) ([]melbetGame, error) {
	q := url.Values{}
	q.Set("sports", "1")
	q.Set("champs", strconv.FormatInt(leagueID, 10))
	q.Set("count", strconv.Itoa(melbetFixturesPerLeague))
	q.Set("lng", "en")
	q.Set("tf", "2200000")
	q.Set("tz", "5")
	q.Set("mode", "4")
	q.Set("country", "71")
	q.Set("partner", "71")
	q.Set("getEmpty", "true")
	q.Set("gr", "35")

	body, err := c.feed.Get(ctx, "/LineFeed/Get1x2_VZip?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp melbetGamesResponse
	err = json.Unmarshal(body, &resp)
	if err != nil {
		return nil, fmt.Errorf("decode melbet games: %w", err)
	}
	if !resp.Success {
		return nil, types.ErrEmptyPayload
	}

	return resp.Value, nil
}

// melbetFixture converts a listed game, skipping duplicates and games
// without real team names.
func melbetFixture(g melbetGame, seen map[int64]bool) (types.RawFixture, bool) {
	if g.CI == 0 || seen[g.CI] || g.O1E == "" || g.O2E == "" || g.O1E == "Home" || g.O2E == "Away" {
		return types.RawFixture{}, false
	}
	seen[g.CI] = true

	f := types.RawFixture{
		SourceID:   formatID(g.CI),
		Source:     types.SourceMelbet,
		HomeTeam:   normalizer.CleanName(g.O1E),
		AwayTeam:   normalizer.CleanName(g.O2E),
		LeagueID:   formatID(g.LI),
		LeagueName: normalizer.CleanName(g.LE),
		Sport:      g.SN,
	}
	if g.S > 0 {
		f.StartTime = time.Unix(g.S, 0).UTC()
	}

	return f, true
}

func gamePath(id string) string {
	q := url.Values{}
	q.Set("id", id)
	q.Set("lng", "en")
	q.Set("isSubGames", "true")
	q.Set("GroupEvents", "true")
	q.Set("allEventsGroupSubGames", "true")
	q.Set("countevents", "250")
	q.Set("partner", "71")
	q.Set("country", "71")
	q.Set("fcountry", "71")
	q.Set("marketType", "1")
	q.Set("gr", "35")
	q.Set("isNewBuilder", "true")

	return "/LineFeed/GetGameZip?" + q.Encode()
}

// FetchOddsPayload returns the raw main game payload for a fixture.
func (c *MelbetClient) FetchOddsPayload(ctx context.Context, fixtureID string) ([]byte, error) {
	body, err := c.feed.Get(ctx, gamePath(fixtureID))
	if err != nil {
		return nil, fmt.Errorf("fetch melbet game %s: %w", fixtureID, err)
	}

	return body, nil
}

// FetchOdds fetches the main game and its segment sub-games and merges them
// into one book. A failed sub-game only loses that segment's markets.
func (c *MelbetClient) FetchOdds(ctx context.Context, fixtureID string) (*types.OddsBook, error) {
	body, err := c.FetchOddsPayload(ctx, fixtureID)
	if err != nil {
		return nil, err
	}

	book, err := c.normalizer.Normalize(fixtureID, body)
	if err != nil {
		return nil, fmt.Errorf("normalize melbet game %s: %w", fixtureID, err)
	}

	refs, err := c.normalizer.SubGameRefs(body)
	if err != nil {
		return nil, fmt.Errorf("list melbet sub-games %s: %w", fixtureID, err)
	}
	if len(refs) == 0 {
		return book, nil
	}

	payloads := make([][]byte, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(melbetSubGameWorkers)
	for i, ref := range refs {
		g.Go(func() error {
			p, err := c.feed.Get(gctx, gamePath(ref.ID))
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				SubGameFailuresTotal.WithLabelValues(types.SourceMelbet).Inc()
				c.logger.Warn("melbet-subgame-fetch-failed",
					zap.String("fixture-id", fixtureID),
					zap.String("segment", ref.Segment),
					zap.Error(err))
				return nil
			}
			payloads[i] = p
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return nil, fmt.Errorf("fetch melbet sub-games %s: %w", fixtureID, err)
	}

	for i, ref := range refs {
		if payloads[i] == nil {
			continue
		}
		err = c.normalizer.NormalizeSubGame(book, ref.Segment, payloads[i])
		if err != nil {
			SubGameFailuresTotal.WithLabelValues(types.SourceMelbet).Inc()
			c.logger.Warn("melbet-subgame-normalize-failed",
				zap.String("fixture-id", fixtureID),
				zap.String("segment", ref.Segment),
				zap.Error(err))
		}
	}

	return book, nil
}
