// Package normalizer turns bookmaker odds payloads into canonical odds books.
package normalizer

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/mselser95/bookie-arb/pkg/types"
)

// Normalizer converts one bookmaker's raw odds payload into an OddsBook.
// A payload without its top-level match structure yields types.ErrEmptyPayload.
// Markets that cannot be read are left out of the book.
type Normalizer interface {
	Source() string
	Normalize(fixtureRef string, payload []byte) (*types.OddsBook, error)
}

// Registry dispatches payloads to the normalizer registered for their source.
type Registry struct {
	normalizers map[string]Normalizer
}

// NewRegistry creates a registry holding ns.
func NewRegistry(ns ...Normalizer) *Registry {
	r := &Registry{normalizers: make(map[string]Normalizer, len(ns))}
	for _, n := range ns {
		r.Register(n)
	}

	return r
}

// DefaultRegistry returns a registry with the Mostbet and Melbet normalizers.
func DefaultRegistry() *Registry {
	return NewRegistry(NewMostbet(), NewOneXBet(types.SourceMelbet))
}

// Register adds or replaces the normalizer for n.Source().
func (r *Registry) Register(n Normalizer) {
	r.normalizers[n.Source()] = n
}

// Get returns the normalizer for source.
func (r *Registry) Get(source string) (Normalizer, error) {
	n, ok := r.normalizers[source]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSource, source)
	}

	return n, nil
}

// Normalize runs the normalizer registered for source.
func (r *Registry) Normalize(source, fixtureRef string, payload []byte) (*types.OddsBook, error) {
	n, err := r.Get(source)
	if err != nil {
		return nil, err
	}

	return n.Normalize(fixtureRef, payload)
}

// flexFloat decodes odds quoted either as a JSON number or a numeric string.
// Anything unparsable decodes to 0 so the quote is dropped rather than failing
// the whole payload.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil //nolint:nilerr
	}
	*f = flexFloat(v)

	return nil
}

// CleanName trims and NFC-normalizes a team or league name.
func CleanName(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// formatLine renders a numeric line the way bookmakers print it: 2.5, 10, -1.25.
func formatLine(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
