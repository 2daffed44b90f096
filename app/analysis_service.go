package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"abkpi/adapters/excel"
	"abkpi/domain/core"
	"abkpi/domain/experiment"
	"abkpi/domain/grid"
	"abkpi/internal"
	"abkpi/internal/analysis"
	"abkpi/internal/config"
	"abkpi/internal/errors"
	"abkpi/internal/insights"
	"abkpi/internal/layout"
	"abkpi/internal/segments"
	"abkpi/ports"
)

// parsedCacheSize bounds how many runs keep their parsed grids for export.
const parsedCacheSize = 32

// FileInput is one report file handed to the service. Data wins over Path.
type FileInput struct {
	Name        string
	Path        string
	Data        []byte
	Country     string
	ReportOrder string
}

func (f FileInput) displayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.Path
}

// AnalysisService turns report files and an analysis config into a stored Run.
type AnalysisService struct {
	reader   ports.GridReader
	repo     ports.RunRepository
	insight  ports.InsightGenerator
	executor *analysis.Executor
	workers  int
	layout   layout.Options
	logger   *internal.Logger

	mu          sync.Mutex
	parsed      map[core.RunID][]excel.ParsedPartition
	parsedOrder []core.RunID
}

// NewAnalysisService creates the service. insight may be nil when AI is disabled.
func NewAnalysisService(reader ports.GridReader, repo ports.RunRepository, insight ports.InsightGenerator, defaults config.AnalysisDefaults, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	logger = logger.WithPrefix("AnalysisService")
	engine := analysis.NewEngine(analysis.WithDiagnostics(logger))
	return &AnalysisService{
		reader:   reader,
		repo:     repo,
		insight:  insight,
		executor: analysis.NewExecutor(engine, defaults.Workers, logger),
		workers:  defaults.Workers,
		layout: layout.Options{
			AnchorKeyword:   defaults.AnchorKeyword,
			FallbackCountry: defaults.FallbackCountry,
			Diagnostics:     logger,
		},
		logger: logger,
		parsed: make(map[core.RunID][]excel.ParsedPartition),
	}
}

// pass carries the per-run diagnostics wiring.
type pass struct {
	logger   *internal.Logger
	layout   layout.Options
	executor *analysis.Executor
}

// passFor returns the shared wiring, or a debug-level copy when cfg.Debug is set.
func (s *AnalysisService) passFor(cfg *config.AnalysisConfig) pass {
	if !cfg.Debug || s.logger.GetLevel() >= internal.LogLevelDebug {
		return pass{logger: s.logger, layout: s.layout, executor: s.executor}
	}
	logger := s.logger.WithLevel(internal.LogLevelDebug)
	opts := s.layout
	opts.Diagnostics = logger
	engine := analysis.NewEngine(analysis.WithDiagnostics(logger))
	return pass{logger: logger, layout: opts, executor: analysis.NewExecutor(engine, s.workers, logger)}
}

// Analyze reads every file, computes all partitions and stores the run.
// Files whose layout cannot be read are recorded on the run; the call fails
// only when no file is usable.
func (s *AnalysisService) Analyze(ctx context.Context, cfg *config.AnalysisConfig, files []FileInput) (*experiment.Run, error) {
	if cfg == nil {
		return nil, errors.InvalidInput("analysis config is required")
	}
	if len(files) == 0 {
		return nil, errors.InvalidInput("at least one report file is required")
	}
	start := time.Now()
	p := s.passFor(cfg)

	run := &experiment.Run{
		ID:         core.NewRunID(),
		CreatedAt:  time.Now().UTC(),
		KPIs:       cfg.KPIConfigs(),
		Variations: cfg.VariationCount,
	}

	var inputs []analysis.Input
	var parsed []excel.ParsedPartition
	for i, f := range files {
		parts, err := s.partitionsFor(ctx, p, cfg, i, f)
		if err != nil {
			p.logger.Warn("skipping %s: %v", f.displayName(), err)
			run.FileErrors = append(run.FileErrors, experiment.FileError{File: f.displayName(), Message: err.Error()})
			continue
		}
		for _, part := range parts {
			inputs = append(inputs, analysis.Input{Data: part.Data, KPIs: run.KPIs, Mapping: part.Mapping, Partition: part.Partition})
			parsed = append(parsed, part)
		}
	}
	if len(inputs) == 0 {
		return nil, errors.LayoutError(fmt.Sprintf("%d file(s)", len(files)), core.ErrNoUsableFiles)
	}
	run.Segments = segmentLabels(parsed)

	report, err := p.executor.Run(ctx, inputs)
	if err != nil {
		return nil, classify(err)
	}
	run.Results = report.Results
	run.Missing = report.Missing
	run.Notices = report.Notices
	for _, fe := range run.FileErrors {
		run.Notices = append(run.Notices, fmt.Sprintf("%s: %s", fe.File, fe.Message))
	}

	summary := insights.Summarize(run.Results)
	run.Insights = experiment.Insights{
		Summary:        summary.Lines(),
		Recommendation: string(summary.Recommendation),
		Reason:         summary.Reason,
	}
	if cfg.UseAI {
		run.Insights.AI = s.generateAI(ctx, run.Results, summary)
	}
	run.Insights.Markdown = summary.Markdown(run.Insights.AI)

	if err := s.repo.Save(ctx, run); err != nil {
		return nil, errors.Wrap(err, "failed to store run")
	}
	s.remember(run.ID, parsed)

	p.logger.Info("run %s: %d partition(s), %d result(s), %d missing metric(s) in %s",
		run.ID, len(inputs), len(run.Results), len(run.Missing), time.Since(start))
	return run, nil
}

func (s *AnalysisService) generateAI(ctx context.Context, results []experiment.KPIResult, summary insights.Summary) string {
	if s.insight == nil {
		s.logger.Warn("AI insights requested but no provider is configured")
		return ""
	}
	text, err := s.insight.Generate(ctx, insights.BuildPrompt(results, summary))
	if err != nil {
		s.logger.Warn("AI insights skipped: %v", err)
		return ""
	}
	return text
}

// partitionsFor reads one file and splits it into computable partitions.
// Every returned mapping fits the file's data columns.
func (s *AnalysisService) partitionsFor(ctx context.Context, p pass, cfg *config.AnalysisConfig, fileIndex int, f FileInput) ([]excel.ParsedPartition, error) {
	g, err := s.read(ctx, f)
	if err != nil {
		return nil, err
	}
	info, err := layout.Detect(g, p.layout)
	if err != nil {
		return nil, errors.LayoutError(f.displayName(), err)
	}
	data := layout.DataGrid(g, info)
	if data.Rows() == 0 {
		return nil, errors.LayoutError(f.displayName(), core.ErrEmptyGrid)
	}
	mapper := segments.NewMapper(p.logger)

	pinned := firstNonEmpty(f.Country, cfg.Country)
	if cfg.SplitCountries && pinned == "" && info.MultiCountry {
		var parts []excel.ParsedPartition
		for ci, code := range info.Countries {
			mapping := mapper.FromCountryGroups(info.CountryGroups[code], data.Width())
			if len(mapping.Entries) == 0 {
				p.logger.Warn("%s: no columns of %s fit the report, country skipped", f.displayName(), code)
				continue
			}
			if err := mapping.Validate(data.Width()); err != nil {
				return nil, errors.ColumnOverflow(fmt.Errorf("%s country %s: %w", f.displayName(), code, err))
			}
			parts = append(parts, excel.ParsedPartition{
				Partition: experiment.Partition{ReportOrder: f.ReportOrder, Country: code, FileIndex: fileIndex, CountryIndex: ci},
				Data:      data,
				Mapping:   mapping,
			})
		}
		if len(parts) > 0 {
			return parts, nil
		}
	}

	var mapping experiment.Mapping
	if cfg.AutoSegments {
		mapping = segments.FromDetected(info.Segments, cfg.VariationCount, data.Width())
	} else {
		mapping = mapper.FromDeclared(cfg.Segments, cfg.VariationCount, data.Width())
	}
	if len(mapping.Entries) == 0 {
		return nil, errors.ColumnOverflow(core.NewColumnOverflowError("segment mapping", 2, data.Width()))
	}
	if err := mapping.Validate(data.Width()); err != nil {
		return nil, errors.ColumnOverflow(fmt.Errorf("%s: %w", f.displayName(), err))
	}
	return []excel.ParsedPartition{{
		Partition: experiment.Partition{ReportOrder: f.ReportOrder, Country: firstNonEmpty(pinned, info.Country), FileIndex: fileIndex},
		Data:      data,
		Mapping:   mapping,
	}}, nil
}

func (s *AnalysisService) read(ctx context.Context, f FileInput) (*grid.Grid, error) {
	var (
		g   *grid.Grid
		err error
	)
	if len(f.Data) > 0 {
		g, err = s.reader.ReadBytes(ctx, f.displayName(), f.Data)
	} else {
		g, err = s.reader.ReadFile(ctx, f.Path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", f.displayName())
	}
	return g, nil
}

// Detection is the layout summary of a single report.
type Detection struct {
	Country      string                       `json:"country"`
	Countries    []string                     `json:"countries"`
	MultiCountry bool                         `json:"multiCountry"`
	Segments     []experiment.DetectedSegment `json:"segments"`
	AnchorRow    int                          `json:"anchorRow"`
}

// DetectCountry runs layout detection on one file without computing KPIs.
func (s *AnalysisService) DetectCountry(ctx context.Context, f FileInput) (*Detection, error) {
	g, err := s.read(ctx, f)
	if err != nil {
		return nil, err
	}
	info, err := layout.Detect(g, s.layout)
	if err != nil {
		return nil, errors.LayoutError(f.displayName(), err)
	}
	return &Detection{
		Country:      info.Country,
		Countries:    info.Countries,
		MultiCountry: info.MultiCountry,
		Segments:     info.Segments,
		AnchorRow:    info.AnchorRow,
	}, nil
}

// GetRun loads a stored run.
func (s *AnalysisService) GetRun(ctx context.Context, id core.RunID) (*experiment.Run, error) {
	run, err := s.repo.Get(ctx, id)
	if err != nil {
		if core.IsNotFoundError(err) {
			return nil, errors.NotFound("run " + id.String())
		}
		return nil, errors.Wrap(err, "failed to load run")
	}
	return run, nil
}

// ListRuns returns the most recent runs.
func (s *AnalysisService) ListRuns(ctx context.Context, limit int) ([]ports.RunSummary, error) {
	runs, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list runs")
	}
	return runs, nil
}

// Export assembles the workbook content of a run. Parsed grids are only
// available for runs computed by this process.
func (s *AnalysisService) Export(ctx context.Context, id core.RunID) (excel.Export, error) {
	run, err := s.GetRun(ctx, id)
	if err != nil {
		return excel.Export{}, err
	}
	s.mu.Lock()
	parsed := s.parsed[id]
	s.mu.Unlock()
	return excel.Export{Parsed: parsed, Results: run.Results, Notices: run.Notices}, nil
}

func (s *AnalysisService) remember(id core.RunID, parsed []excel.ParsedPartition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.parsed[id] = parsed
	s.parsedOrder = append(s.parsedOrder, id)
	for len(s.parsedOrder) > parsedCacheSize {
		delete(s.parsed, s.parsedOrder[0])
		s.parsedOrder = s.parsedOrder[1:]
	}
}

// classify attaches an error code to executor failures.
func classify(err error) error {
	switch {
	case errors.IsAppError(err):
		return err
	case stderrors.Is(err, core.ErrInvalidKPIConfig):
		return &errors.AppError{Code: errors.CodeConfigInvalid, Message: "invalid KPI configuration", Cause: err}
	case core.IsStructuralError(err):
		return errors.ColumnOverflow(err)
	default:
		return errors.Wrap(err, "analysis failed")
	}
}

func segmentLabels(parts []excel.ParsedPartition) []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range parts {
		for _, l := range segments.Labels(p.Mapping) {
			if !seen[l] {
				seen[l] = true
				out = append(out, l)
			}
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return strings.ToUpper(v)
		}
	}
	return ""
}
