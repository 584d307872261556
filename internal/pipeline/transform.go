package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/state-energy-map/internal/domain"
	"github.com/couchcryptid/state-energy-map/internal/observability"
)

// Dataset labels used in logs and metrics.
const (
	DatasetBoundaries  = "boundaries"
	DatasetConsumption = "consumption"
	DatasetProduction  = "production"
)

// Normalizer runs the domain normalization functions and records what they
// dropped.
type Normalizer struct {
	opts    domain.NormalizeOptions
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewNormalizer creates a Normalizer with the given source options.
func NewNormalizer(opts domain.NormalizeOptions, logger *slog.Logger, metrics *observability.Metrics) *Normalizer {
	return &Normalizer{opts: opts, logger: logger, metrics: metrics}
}

// Consumption cleans consumption rows.
func (n *Normalizer) Consumption(rows []domain.RawConsumptionRow) ([]domain.ConsumptionRecord, domain.DropReport) {
	records, report := domain.NormalizeConsumption(rows)
	n.record(DatasetConsumption, len(rows), len(records), report)
	return records, report
}

// Production cleans production rows.
func (n *Normalizer) Production(rows []domain.RawProductionRow) ([]domain.ProductionRecord, domain.DropReport) {
	records, report := domain.NormalizeProduction(rows, n.opts)
	n.record(DatasetProduction, len(rows), len(records), report)
	return records, report
}

func (n *Normalizer) record(dataset string, read, kept int, report domain.DropReport) {
	for reason, count := range report.Dropped {
		n.metrics.RowsDropped.WithLabelValues(dataset, string(reason)).Add(float64(count))
	}
	n.metrics.UnparsedValues.WithLabelValues(dataset).Add(float64(report.Unparseable))

	if report.Unparseable > 0 {
		n.logger.Warn("unparseable values treated as 0", "dataset", dataset, "count", report.Unparseable)
	}
	n.logger.Info("normalized",
		"dataset", dataset,
		"rows", read,
		"kept", kept,
		"dropped", report.Total(),
	)
	for reason, count := range report.Dropped {
		n.logger.Debug("rows dropped", "dataset", dataset, "reason", reason, "count", count)
	}
}
