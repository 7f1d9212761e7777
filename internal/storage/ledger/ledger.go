// Package ledger persists the cumulative spend/fill totals and the
// append-only price history consumed by the weighted-average report.
// Files are plain JSON, read-modify-written once per run; the bot is
// the only writer, callers must not schedule overlapping runs.
package ledger

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/cryptodca/stacker/internal/entity"
)

// ErrNoHistory is returned when the weighted average is requested but
// no fills were ever recorded.
var ErrNoHistory = errors.New("price history is empty")

const filePerm = 0o644

// Store owns the two ledger files.
type Store struct {
	totalsPath string
	pricesPath string
}

// NewStore returns a Store over the given file paths.
func NewStore(totalsPath, pricesPath string) *Store {
	return &Store{totalsPath: totalsPath, pricesPath: pricesPath}
}

// Totals loads the cumulative counters, zero-valued when the file does
// not exist yet.
func (s *Store) Totals() (entity.Totals, error) {
	var totals entity.Totals

	data, err := os.ReadFile(s.totalsPath)
	if os.IsNotExist(err) {
		return totals, nil
	}
	if err != nil {
		return totals, errors.Wrap(err, "failed to read totals")
	}
	if err := json.Unmarshal(data, &totals); err != nil {
		return totals, errors.Wrap(err, "failed to decode totals")
	}

	return totals, nil
}

// RecordFill adds one confirmed purchase to the cumulative totals.
// Filled is rounded to cents; totals only ever grow.
func (s *Store) RecordFill(spent int64, filled decimal.Decimal) (entity.Totals, error) {
	totals, err := s.Totals()
	if err != nil {
		return entity.Totals{}, err
	}

	totals.TotalSpent += spent
	totals.TotalFilled = totals.TotalFilled.Add(filled).Round(2)

	if err := s.writeJSON(s.totalsPath, totals); err != nil {
		return entity.Totals{}, err
	}

	return totals, nil
}

// Prices loads the full price history, empty when the file is absent.
func (s *Store) Prices() ([]entity.PricePoint, error) {
	data, err := os.ReadFile(s.pricesPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read price history")
	}

	var points []entity.PricePoint
	if err := json.Unmarshal(data, &points); err != nil {
		return nil, errors.Wrap(err, "failed to decode price history")
	}

	return points, nil
}

// RecordPrice appends one weight/price record. Existing entries are
// never mutated.
func (s *Store) RecordPrice(weight, price decimal.Decimal) error {
	points, err := s.Prices()
	if err != nil {
		return err
	}

	points = append(points, entity.PricePoint{Weight: weight, Price: price})

	return s.writeJSON(s.pricesPath, points)
}

// WeightedAveragePrice computes round(sum(weight*price)/sum(weight), 2)
// over the recorded history, accumulating with per-step rounding to
// stay consistent with historically recorded values.
func (s *Store) WeightedAveragePrice() (decimal.Decimal, error) {
	points, err := s.Prices()
	if err != nil {
		return decimal.Zero, err
	}

	return WeightedAveragePrice(points)
}

// WeightedAveragePrice is the arithmetic shared with the avgprice
// report utility.
func WeightedAveragePrice(points []entity.PricePoint) (decimal.Decimal, error) {
	totalWeight := decimal.Zero
	weightedSum := decimal.Zero

	for _, p := range points {
		totalWeight = totalWeight.Add(p.Weight).Round(2)
		weightedSum = weightedSum.Add(p.Weight.Mul(p.Price)).Round(2)
	}

	if totalWeight.IsZero() {
		return decimal.Zero, ErrNoHistory
	}

	return weightedSum.Div(totalWeight).Round(2), nil
}

// writeJSON replaces the target atomically via temp file + rename so a
// crashed run cannot leave a half-written ledger.
func (s *Store) writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode ledger file")
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp ledger file")
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write ledger file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to close ledger file")
	}
	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, "failed to chmod ledger file")
	}

	return errors.Wrap(os.Rename(tmp.Name(), path), "failed to replace ledger file")
}
