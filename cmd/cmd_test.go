package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/internal/testutil"
	"github.com/mselser95/bookie-arb/pkg/types"
)

func TestParseOdds(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []float64
		wantErr bool
	}{
		{name: "three-way", args: []string{"2.1", "3.8", "4.2"}, want: []float64{2.1, 3.8, 4.2}},
		{name: "trims-spaces", args: []string{" 1.95", "2.05 "}, want: []float64{1.95, 2.05}},
		{name: "not-a-number", args: []string{"2.1", "abc"}, wantErr: true},
		{name: "odds-of-one", args: []string{"1", "3.0"}, wantErr: true},
		{name: "negative", args: []string{"-2", "3.0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOdds(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateArbitrage(t *testing.T) {
	var out bytes.Buffer

	err := evaluate(&out, []string{"2.1", "3.8", "4.2"}, 1000)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Total implied: 0.9774")
	assert.Contains(t, s, "Arbitrage:     2.31% profit")
	assert.Contains(t, s, "stake 487.18 on 2.10")
	assert.Contains(t, s, "Return 1023.08 on 1000.00 (profit 23.08)")
}

func TestEvaluateNoArbitrage(t *testing.T) {
	var out bytes.Buffer

	err := evaluate(&out, []string{"1.9", "1.9"}, 1000)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "No arbitrage: the book keeps 5.26%")
	assert.NotContains(t, out.String(), "Arbitrage:")
}

func TestEvaluateBadOdds(t *testing.T) {
	var out bytes.Buffer

	err := evaluate(&out, []string{"2.1", "x"}, 1000)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestPrintPairs(t *testing.T) {
	var out bytes.Buffer
	printPairs(&out, nil)
	assert.Contains(t, out.String(), "No matching fixtures found.")

	out.Reset()
	pair := testutil.CreateTestPair("1", "10", "Arsenal", "Chelsea")
	printPairs(&out, []types.MatchedFixturePair{pair})

	s := out.String()
	assert.Contains(t, s, "Arsenal vs Chelsea")
	assert.Contains(t, s, "Total: 1 pairs")
}

func TestPrintOpportunities(t *testing.T) {
	var out bytes.Buffer
	printOpportunities(&out, nil)
	assert.Contains(t, out.String(), "No arbitrage found.")

	out.Reset()
	opp := arbitrage.NewOpportunity("1X2", []arbitrage.Leg{
		{Label: "W1", Odds: 2.6, Source: "mostbet"},
		{Label: "X", Odds: 3.9, Source: "melbet"},
		{Label: "W2", Odds: 3.4, Source: "melbet"},
	}, 1000)
	require.NotNil(t, opp)
	printOpportunities(&out, []*arbitrage.Opportunity{opp})

	s := out.String()
	assert.Contains(t, s, "W1 2.60@mostbet, X 3.90@melbet, W2 3.40@melbet")
	assert.Contains(t, s, "Total: 1 opportunities")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, loadDotEnv(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOOKIE_ARB_DOTENV_TEST=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("BOOKIE_ARB_DOTENV_TEST") })

	require.NoError(t, loadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("BOOKIE_ARB_DOTENV_TEST"))
}

func TestFetchArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "mostbet", args: []string{"mostbet"}},
		{name: "melbet", args: []string{"melbet"}},
		{name: "unknown-source", args: []string{"bet365"}, wantErr: true},
		{name: "no-source", args: nil, wantErr: true},
		{name: "two-sources", args: []string{"mostbet", "melbet"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fetchCmd.Args(fetchCmd, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
