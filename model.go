package currency

import (
	"time"

	"github.com/google/uuid"
)

type (
	// BaseRateTable maps a currency code to its rate against the base currency.
	BaseRateTable map[string]float64

	// Pair is an ordered (from, to) currency pair.
	Pair struct {
		From string
		To   string
	}

	// Matrix holds the any-to-any conversion rates: amount(To) = amount(From) * rate.
	// A matrix is never modified once it has been built.
	Matrix map[Pair]float64

	Origin string

	// Snapshot is an immutable, timestamped matrix together with its provenance.
	Snapshot struct {
		ID         uuid.UUID
		Base       string
		Matrix     Matrix
		CapturedAt time.Time
		Origin     Origin
	}

	State string

	ConversionRequest struct {
		Amount float64
		From   string
		To     string
	}

	ConversionResult struct {
		Amount          float64
		From            string
		To              string
		ConvertedAmount float64
		Rate            float64
		SnapshotID      uuid.UUID
		Origin          Origin
	}
)

const (
	OriginLive     Origin = "live"
	OriginFallback Origin = "fallback"
)

const (
	StateSeeding        State = "seeding"
	StateFallbackActive State = "fallback_active"
	StateLiveActive     State = "live_active"
	StateRefreshing     State = "refreshing"
)

func (t BaseRateTable) Clone() BaseRateTable {
	clone := make(BaseRateTable, len(t))

	for code, rate := range t {
		clone[code] = rate
	}

	return clone
}

func (m Matrix) Rate(from, to string) (float64, bool) {
	rate, ok := m[Pair{From: from, To: to}]
	return rate, ok
}

// NewSnapshot stamps a freshly built matrix with a new id.
func NewSnapshot(base string, matrix Matrix, origin Origin, capturedAt time.Time) *Snapshot {
	return &Snapshot{
		ID:         uuid.New(),
		Base:       base,
		Matrix:     matrix,
		CapturedAt: capturedAt,
		Origin:     origin,
	}
}

func (s *Snapshot) IsLive() bool {
	return s != nil && s.Origin == OriginLive
}
