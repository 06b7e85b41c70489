// =============================================================================
// Collections Automation - Automation Runner
// =============================================================================
//
// This module runs one automation over one input file.
//
// PIPELINE:
//   1. Check the campaign allows the automation
//   2. Load the source sheet
//   3. Apply the campaign's column manipulations (clean only) and the
//      configured cleaning options
//   4. Run the automation (clean, updates, uploads, cured-list)
//   5. Write every output table into its work directory
//   6. Copy the input into its work directory
//   7. Archive the input (optional)
//
// A dry run stops after step 4.
//
// The cured list reads the source as loaded. Cleaning only feeds its stats,
// so the cleaning options never change cured list output.
//
// Files are processed one at a time; the runner holds no state between runs
// other than its metrics recorder.
//
// =============================================================================

package automation

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/cleaning"
	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/ginjaninja78/collections-automation/internal/curing"
	"github.com/ginjaninja78/collections-automation/internal/endorsement"
	"github.com/ginjaninja78/collections-automation/internal/manipulation"
	"github.com/ginjaninja78/collections-automation/internal/metrics"
	"github.com/ginjaninja78/collections-automation/internal/reader"
	"github.com/ginjaninja78/collections-automation/internal/sheet"
	"github.com/ginjaninja78/collections-automation/internal/writer"
	"github.com/ginjaninja78/collections-automation/pkg/utils"
	"go.uber.org/zap"
)

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Request describes one automation run.
type Request struct {
	// InputPath is the source file.
	InputPath string

	// Automation is one of the config.Automation* names.
	Automation string

	// Campaign supplies layout, file names, and allowed automations.
	Campaign *config.CampaignConfig

	// Sheet overrides the campaign's source sheet when set.
	Sheet string

	// DryRun runs the transformation without writing any file.
	DryRun bool
}

// Result represents the outcome of one run.
type Result struct {
	FilePath   string
	Campaign   string
	Automation string

	// OutputFiles lists the written output paths. Empty on a dry run.
	OutputFiles []string

	// InputCopy is the copy of the input placed in the work directory.
	InputCopy string

	// ArchivedTo is the archive path when the input was archived.
	ArchivedTo string

	Success bool
	Error   error
	Stats   ProcessingStats
}

// ProcessingStats contains statistics about a run.
type ProcessingStats struct {
	// SourceRows is the number of data rows read.
	SourceRows int

	// CleanedRows is the number of rows left after cleaning.
	CleanedRows int

	// OutputRows maps each output table to its row count.
	OutputRows map[string]int

	// Categories maps cured list categories to their source row counts.
	Categories map[string]int

	LookupMisses  int
	DateFallbacks int

	ProcessingTime time.Duration
}

// Output table keys.
const (
	TableCleaned   = "cleaned"
	TableUpdates   = "updates"
	TableUploads   = "uploads"
	TableRemarks   = "remarks"
	TableReshuffle = "reshuffle"
	TablePayments  = "payments"
)

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner executes automation requests.
type Runner struct {
	mainConfig *config.MainConfig
	files      *utils.FileManager
	logger     *zap.Logger
	metrics    *metrics.Recorder
	now        func() time.Time
}

// New creates a Runner. logger and recorder may be nil.
func New(mainConfig *config.MainConfig, logger *zap.Logger, recorder *metrics.Recorder) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		mainConfig: mainConfig,
		files:      utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir),
		logger:     logger,
		metrics:    recorder,
		now:        time.Now,
	}
}

// WithClock replaces the clock used for file names and date fallbacks.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// output is one table to be written.
type output struct {
	key        string
	dir        string
	nameFormat string
	table      *sheet.Table
}

// job is what an automation produced: its tables and where the input copy
// goes.
type job struct {
	workDirs    string
	outputs     []output
	inputDir    string
	inputFormat string
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes one request.
func (r *Runner) Run(req Request) Result {
	start := r.now()
	result := Result{
		FilePath:   req.InputPath,
		Automation: req.Automation,
		Stats:      ProcessingStats{OutputRows: make(map[string]int)},
	}
	if req.Campaign != nil {
		result.Campaign = req.Campaign.CampaignCode
	}

	log := r.logger.With(
		zap.String("file", filepath.Base(req.InputPath)),
		zap.String("campaign", result.Campaign),
		zap.String("automation", req.Automation),
	)

	err := r.run(req, &result, log)
	elapsed := r.now().Sub(start)
	result.Stats.ProcessingTime = elapsed
	r.metrics.FinishRun(req.Automation, err, elapsed)

	if err != nil {
		result.Error = err
		log.Error("automation failed", zap.Error(err))
		return result
	}

	result.Success = true
	log.Info("automation complete",
		zap.Int("source_rows", result.Stats.SourceRows),
		zap.Strings("outputs", result.OutputFiles),
		zap.Bool("dry_run", req.DryRun),
	)
	return result
}

func (r *Runner) run(req Request, result *Result, log *zap.Logger) error {
	// =========================================================================
	// STEP 1: CHECK CAMPAIGN
	// =========================================================================

	campaign := req.Campaign
	if campaign == nil {
		return fmt.Errorf("no campaign given")
	}
	if !config.IsAutomation(req.Automation) {
		return fmt.Errorf("unknown automation %q", req.Automation)
	}
	if !campaign.Allows(req.Automation) {
		return fmt.Errorf("campaign %s does not allow automation %q (allowed: %s)",
			campaign.CampaignCode, req.Automation, strings.Join(campaign.Automations, ", "))
	}

	// =========================================================================
	// STEP 2: LOAD SOURCE
	// =========================================================================

	sheetName := req.Sheet
	if sheetName == "" {
		sheetName = campaign.Source.Sheet
	}
	src, err := reader.Load(req.InputPath, reader.Options{Sheet: sheetName, Delimiter: campaign.Source.Delimiter})
	if err != nil {
		return fmt.Errorf("failed to load source: %w", err)
	}
	result.Stats.SourceRows = src.Len()
	r.metrics.SourceRows(req.Automation, src.Len())
	log.Debug("loaded source", zap.String("sheet", src.Name), zap.Int("rows", src.Len()), zap.Int("columns", src.Width()))

	// =========================================================================
	// STEP 3: MANIPULATE AND CLEAN
	// =========================================================================

	base := src
	if req.Automation == config.AutomationClean && len(campaign.Manipulations) > 0 {
		base = src.Clone()
		mstats, err := manipulation.Apply(base, campaign.Manipulations)
		if err != nil {
			return fmt.Errorf("failed to apply manipulations: %w", err)
		}
		log.Debug("applied manipulations",
			zap.Int("columns_added", mstats.ColumnsAdded),
			zap.Int("columns_removed", mstats.ColumnsRemoved),
			zap.Int("columns_renamed", mstats.ColumnsRenamed),
			zap.Int("rows_filtered", mstats.RowsFiltered),
		)
	}

	opts := cleaning.Options{
		RemoveDuplicates: r.mainConfig.Cleaning.RemoveDuplicates,
		RemoveBlanks:     r.mainConfig.Cleaning.RemoveBlanks,
		TrimSpaces:       r.mainConfig.Cleaning.TrimSpaces,
	}
	cleaned, cleanStats, err := cleaning.Clean(base, opts)
	if err != nil {
		return fmt.Errorf("failed to clean source: %w", err)
	}
	result.Stats.CleanedRows = cleaned.Len()
	log.Debug("cleaned source",
		zap.Strings("steps", opts.Steps()),
		zap.Int("blank_rows_removed", cleanStats.BlankRowsRemoved),
		zap.Int("duplicates_removed", cleanStats.DuplicatesRemoved),
	)

	// =========================================================================
	// STEP 4: RUN AUTOMATION
	// =========================================================================

	var j job
	switch req.Automation {
	case config.AutomationClean:
		j = r.clean(cleaned, campaign, req.InputPath)
	case config.AutomationUpdates, config.AutomationUploads:
		j, err = r.endorse(cleaned, campaign, req.Automation, log)
	case config.AutomationCuredList:
		j, err = r.curedList(src, campaign, result, log)
	}
	if err != nil {
		return err
	}

	for _, o := range j.outputs {
		result.Stats.OutputRows[o.key] = o.table.Len()
	}

	if req.DryRun {
		return nil
	}

	// =========================================================================
	// STEP 5: WRITE OUTPUTS
	// =========================================================================

	dirs, err := r.files.EnsureWorkDirs(j.workDirs)
	if err != nil {
		return err
	}

	now := r.now()
	params := map[string]string{
		"campaign": campaign.CampaignCode,
		"original": utils.BaseName(req.InputPath),
	}

	for _, o := range j.outputs {
		path := filepath.Join(dirs[o.dir], utils.GenerateOutputFileName(o.nameFormat, now, params))
		if err := writer.WriteXLSX(path, o.table); err != nil {
			return fmt.Errorf("failed to write %s output: %w", o.key, err)
		}
		result.OutputFiles = append(result.OutputFiles, path)
		r.metrics.OutputRows(o.key, o.table.Len())
		log.Info("wrote output", zap.String("table", o.key), zap.String("path", path), zap.Int("rows", o.table.Len()))
	}

	// =========================================================================
	// STEP 6: COPY INPUT
	// =========================================================================

	if j.inputFormat != "" {
		name := utils.GenerateOutputFileName(j.inputFormat, now, params)
		name = strings.TrimSuffix(name, ".xlsx") + strings.ToLower(filepath.Ext(req.InputPath))
		copyPath := filepath.Join(dirs[j.inputDir], name)
		if err := utils.CopyFile(req.InputPath, copyPath); err != nil {
			return fmt.Errorf("failed to copy input: %w", err)
		}
		result.InputCopy = copyPath
	}

	// =========================================================================
	// STEP 7: ARCHIVE INPUT
	// =========================================================================

	if r.mainConfig.ArchiveInput {
		archived, err := r.files.ArchiveInputFile(req.InputPath)
		if err != nil {
			log.Warn("failed to archive input", zap.Error(err))
		} else {
			result.ArchivedTo = archived
		}
	}

	return nil
}

// =============================================================================
// AUTOMATIONS
// =============================================================================

func (r *Runner) clean(t *sheet.Table, campaign *config.CampaignConfig, inputPath string) job {
	cleaning.SanitizeHeaders(t)
	t.Name = "Sheet1"
	return job{
		workDirs: config.AutomationClean,
		outputs: []output{
			{key: TableCleaned, dir: utils.DirCleaned, nameFormat: cleanNameFormat(campaign, inputPath), table: t},
		},
	}
}

// cleanNameFormat falls back to CLEANED_DATA when the input has no usable
// base name.
func cleanNameFormat(campaign *config.CampaignConfig, inputPath string) string {
	format := campaign.FileNames.Clean
	if strings.Contains(format, "{original}") && utils.BaseName(inputPath) == "" {
		return "CLEANED_DATA.xlsx"
	}
	return format
}

func (r *Runner) endorse(t *sheet.Table, campaign *config.CampaignConfig, automation string, log *zap.Logger) (job, error) {
	out, stats, err := endorsement.Remap(t)
	if err != nil {
		return job{}, fmt.Errorf("failed to remap endorsement: %w", err)
	}
	if len(stats.MissingColumns) > 0 {
		log.Warn("endorsement columns missing", zap.Strings("columns", stats.MissingColumns))
	}
	if stats.CoercedToZero > 0 {
		log.Debug("numeric cells coerced to zero", zap.Int("count", stats.CoercedToZero))
	}

	if automation == config.AutomationUpdates {
		return job{
			workDirs:    config.AutomationUpdates,
			outputs:     []output{{key: TableUpdates, dir: utils.DirBPIForUpdates, nameFormat: campaign.FileNames.Updates, table: out}},
			inputDir:    utils.DirForUpdates,
			inputFormat: campaign.FileNames.UpdatesInput,
		}, nil
	}
	return job{
		workDirs:    config.AutomationUploads,
		outputs:     []output{{key: TableUploads, dir: utils.DirBPIForUploads, nameFormat: campaign.FileNames.Uploads, table: out}},
		inputDir:    utils.DirForUploads,
		inputFormat: campaign.FileNames.UploadsInput,
	}, nil
}

func (r *Runner) curedList(t *sheet.Table, campaign *config.CampaignConfig, result *Result, log *zap.Logger) (job, error) {
	out, err := curing.Run(t, curing.Options{
		Layout:           CuringLayout(campaign.Layout),
		SpecialCollector: campaign.SpecialCollector,
		Now:              r.now,
		Logger:           log,
	})
	if err != nil {
		return job{}, fmt.Errorf("cured list pipeline failed: %w", err)
	}

	result.Stats.Categories = make(map[string]int, len(curing.Categories))
	for _, c := range curing.Categories {
		n := out.Stats.Categories[c]
		result.Stats.Categories[c.String()] = n
		r.metrics.CategoryRows(c.String(), n)
	}
	result.Stats.LookupMisses = out.Stats.LookupMisses
	result.Stats.DateFallbacks = out.Stats.DateFallbacks
	r.metrics.Degradations(metrics.DegradationLookupMiss, out.Stats.LookupMisses)
	r.metrics.Degradations(metrics.DegradationDateFallback, out.Stats.DateFallbacks)

	names := campaign.FileNames
	return job{
		workDirs: config.AutomationCuredList,
		outputs: []output{
			{key: TableRemarks, dir: utils.DirForRemarks, nameFormat: names.Remarks, table: out.Remarks},
			{key: TableReshuffle, dir: utils.DirForOthers, nameFormat: names.Reshuffle, table: out.Reshuffle},
			{key: TablePayments, dir: utils.DirForPayments, nameFormat: names.Payments, table: out.Payments},
		},
		inputDir:    utils.DirCuredList,
		inputFormat: names.CuredListInput,
	}, nil
}

// CuringLayout converts configured positions into a pipeline layout.
func CuringLayout(l config.LayoutSettings) curing.Layout {
	return curing.Layout{
		Barcode:    l.Barcode,
		Collector:  l.Collector,
		Date:       l.Date,
		Amount:     l.Amount,
		ActionFlag: l.ActionFlag,
		LAN:        l.LAN,
		Name:       l.Name,
		Phone1:     l.Phone1,
		Phone2:     l.Phone2,
		MinColumns: l.MinColumns,
	}
}
