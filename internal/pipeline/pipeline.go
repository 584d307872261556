package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/state-energy-map/internal/domain"
	"github.com/couchcryptid/state-energy-map/internal/observability"
)

// BoundarySource loads the state polygons.
type BoundarySource interface {
	States(ctx context.Context) ([]domain.StateRecord, error)
}

// ConsumptionSource loads the raw consumption table for the selected year.
type ConsumptionSource interface {
	ConsumptionRows(ctx context.Context) ([]domain.RawConsumptionRow, error)
}

// ProductionSource loads the raw production table for the selected year.
type ProductionSource interface {
	ProductionRows(ctx context.Context) ([]domain.RawProductionRow, error)
}

// Renderer turns the joined map data into one output file.
type Renderer interface {
	Name() string
	Render(ctx context.Context, data domain.MapData) ([]byte, error)
}

// ProfilePublisher sends the finished profiles downstream.
type ProfilePublisher interface {
	PublishProfiles(ctx context.Context, data domain.MapData) (int, error)
}

// Sources groups the three inputs of a run.
type Sources struct {
	Boundaries  BoundarySource
	Consumption ConsumptionSource
	Production  ProductionSource
}

// Options are the per-run parameters.
type Options struct {
	Year      string
	OutputDir string
	Palette   domain.Palette
	Normalize domain.NormalizeOptions
}

// Artifact describes a completed run.
type Artifact struct {
	Files     []string // paths written, in renderer order
	Data      domain.MapData
	Drops     map[string]domain.DropReport // by dataset
	Published int
}

// Pipeline runs load, normalize, aggregate, join and render once per call to Run.
type Pipeline struct {
	sources    Sources
	normalizer *Normalizer
	renderers  []Renderer
	publisher  ProfilePublisher
	opts       Options
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// New creates a Pipeline. publisher may be nil.
func New(src Sources, renderers []Renderer, publisher ProfilePublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		sources:    src,
		normalizer: NewNormalizer(opts.Normalize, logger, metrics),
		renderers:  renderers,
		publisher:  publisher,
		opts:       opts,
		logger:     logger,
		metrics:    metrics,
	}
}

// CheckReadiness returns nil once a run has written its output.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no map has been built yet")
	}
	return nil
}

// Run executes one batch. Any load or render failure aborts the run before a
// file is written, and a failed write leaves the previous output in place. A publish failure is returned after the files are in place.
func (p *Pipeline) Run(ctx context.Context) (Artifact, error) {
	start := time.Now()
	p.logger.Info("build started", "year", p.opts.Year, "output_dir", p.opts.OutputDir)

	states, consumptionRows, productionRows, err := p.load(ctx)
	if err != nil {
		return Artifact{}, err
	}

	consumption, consumptionDrops := p.normalizer.Consumption(consumptionRows)
	production, productionDrops := p.normalizer.Production(productionRows)
	if len(consumption) == 0 {
		return Artifact{}, fmt.Errorf("normalize consumption: %w", domain.ErrEmptyDataset)
	}

	profiles := domain.BuildProfiles(consumption, production)
	p.metrics.ProfilesBuilt.Set(float64(len(profiles)))
	p.logger.Info("profiles built", "count", len(profiles))

	data := domain.NewMapData(p.opts.Year, states, profiles, p.opts.Palette, p.logger)
	for _, f := range data.Features {
		if !f.HasProfile {
			p.metrics.JoinMisses.Inc()
		}
	}

	rendered, err := p.render(ctx, data)
	if err != nil {
		return Artifact{}, err
	}
	files, err := p.write(rendered)
	if err != nil {
		return Artifact{}, err
	}

	artifact := Artifact{
		Files: files,
		Data:  data,
		Drops: map[string]domain.DropReport{
			DatasetConsumption: consumptionDrops,
			DatasetProduction:  productionDrops,
		},
	}

	p.ready.Store(true)
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())

	if p.publisher != nil {
		n, err := p.publisher.PublishProfiles(ctx, data)
		if err != nil {
			return artifact, fmt.Errorf("publish profiles: %w", err)
		}
		artifact.Published = n
		p.metrics.ProfilesPublished.Add(float64(n))
	}

	p.metrics.LastSuccess.SetToCurrentTime()
	p.logger.Info("build complete",
		"files", len(files),
		"profiles", len(profiles),
		"published", artifact.Published,
		"duration", time.Since(start),
	)
	return artifact, nil
}

func (p *Pipeline) load(ctx context.Context) ([]domain.StateRecord, []domain.RawConsumptionRow, []domain.RawProductionRow, error) {
	states, err := p.sources.Boundaries.States(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load %s: %w", DatasetBoundaries, err)
	}
	if len(states) == 0 {
		return nil, nil, nil, fmt.Errorf("load %s: %w", DatasetBoundaries, domain.ErrEmptyDataset)
	}
	p.metrics.RowsRead.WithLabelValues(DatasetBoundaries).Add(float64(len(states)))

	consumption, err := p.sources.Consumption.ConsumptionRows(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load %s: %w", DatasetConsumption, err)
	}
	p.metrics.RowsRead.WithLabelValues(DatasetConsumption).Add(float64(len(consumption)))

	production, err := p.sources.Production.ProductionRows(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load %s: %w", DatasetProduction, err)
	}
	p.metrics.RowsRead.WithLabelValues(DatasetProduction).Add(float64(len(production)))

	p.logger.Debug("inputs loaded",
		"states", len(states),
		"consumption_rows", len(consumption),
		"production_rows", len(production),
	)
	return states, consumption, production, nil
}

type renderedFile struct {
	name string
	data []byte
}

func (p *Pipeline) render(ctx context.Context, data domain.MapData) ([]renderedFile, error) {
	out := make([]renderedFile, 0, len(p.renderers))
	for _, r := range p.renderers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := r.Render(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", r.Name(), err)
		}
		out = append(out, renderedFile{name: r.Name(), data: b})
	}
	return out, nil
}

// write creates the output directory and replaces every file as one unit.
// All files are staged as temporaries first, then renamed into place. If any
// step fails, staged files are removed and already replaced files are
// restored from their backups.
func (p *Pipeline) write(files []renderedFile) ([]string, error) {
	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	staged := make([]stagedFile, 0, len(files))
	defer func() {
		for _, s := range staged {
			_ = os.Remove(s.tmp)
		}
	}()
	for _, f := range files {
		path := filepath.Join(p.opts.OutputDir, f.name)
		tmp, err := writeTemp(path, f.data)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.name, err)
		}
		staged = append(staged, stagedFile{name: f.name, path: path, tmp: tmp, size: len(f.data)})
	}

	committed := make([]stagedFile, 0, len(staged))
	for i := range staged {
		if err := staged[i].commit(); err != nil {
			p.rollback(committed)
			return nil, fmt.Errorf("write %s: %w", staged[i].name, err)
		}
		committed = append(committed, staged[i])
	}

	paths := make([]string, 0, len(committed))
	for _, s := range committed {
		if s.backup != "" {
			_ = os.Remove(s.backup)
		}
		p.metrics.ArtifactsWritten.WithLabelValues(s.name).Inc()
		p.logger.Info("artifact written", "path", s.path, "bytes", s.size)
		paths = append(paths, s.path)
	}
	return paths, nil
}

// rollback undoes committed renames in reverse order.
func (p *Pipeline) rollback(committed []stagedFile) {
	for i := len(committed) - 1; i >= 0; i-- {
		s := committed[i]
		if err := os.Remove(s.path); err != nil {
			p.logger.Error("rollback remove failed", "path", s.path, "error", err)
		}
		if s.backup == "" {
			continue
		}
		if err := os.Rename(s.backup, s.path); err != nil {
			p.logger.Error("rollback restore failed", "path", s.path, "backup", s.backup, "error", err)
		}
	}
}

type stagedFile struct {
	name   string
	path   string
	tmp    string
	backup string // previous regular file moved aside during commit
	size   int
}

// commit moves an existing regular file at path aside, then renames the
// staged temporary into place. Anything other than a regular file at path is
// left alone and makes the rename fail.
func (s *stagedFile) commit() error {
	if info, err := os.Lstat(s.path); err == nil && info.Mode().IsRegular() {
		backup := s.tmp + ".bak"
		if err := os.Rename(s.path, backup); err != nil {
			return err
		}
		s.backup = backup
	}
	if err := os.Rename(s.tmp, s.path); err != nil {
		if s.backup != "" {
			_ = os.Rename(s.backup, s.path)
			s.backup = ""
		}
		return err
	}
	return nil
}

// writeTemp stages data next to path and returns the temporary file name.
func writeTemp(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	if err := os.Chmod(name, 0o644); err != nil {
		_ = os.Remove(name)
		return "", err
	}
	return name, nil
}
