package scraper

import (
	"bytes"
	"context"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// Source is a bookmaker that lists fixtures and serves odds per fixture.
type Source interface {
	Name() string
	FetchFixtures(ctx context.Context) ([]types.RawFixture, error)
	FetchOdds(ctx context.Context, fixtureID string) (*types.OddsBook, error)
}

// flexID decodes an id sent either as a JSON number or a string.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		err := json.Unmarshal(data, &s)
		if err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}

	var n json.Number
	err := json.Unmarshal(data, &n)
	if err != nil {
		return err
	}
	*f = flexID(n.String())

	return nil
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}

	return strconv.FormatInt(id, 10)
}
