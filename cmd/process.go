// =============================================================================
// Collections Automation - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs every matching file in
// the input directory through its automation.
//
// COMMAND USAGE:
//   automation process [flags]
//
// FLAGS:
//   --dry-run  : Run the transformations without writing files
//   --file     : Process only this file instead of scanning input_dir
//   --campaign : Match files against this campaign only
//
// PROCESSING PIPELINE:
//   1. Discover readable files (.xlsx, .xlsm, .csv, .txt) in the input directory
//   2. Match each file name to a campaign and automation
//   3. Run each file, one at a time
//   4. Write the summary log
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/collections-automation/internal/automation"
	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/ginjaninja78/collections-automation/internal/reader"
	"github.com/ginjaninja78/collections-automation/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processDryRun   bool
	processFile     string
	processCampaign string
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run every matching input file through its automation",
	Long: `The process command scans the input directory for readable files, matches
each file name against the file_matching_patterns of every campaign, and
runs the matched automation.

Files are processed one at a time. A failure in one file is reported and
does not stop the others. Files that match no campaign are skipped.

A summary log is written to the output directory after the run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "Run the transformations without writing files")
	processCmd.Flags().StringVar(&processFile, "file", "", "Process only this file")
	processCmd.Flags().StringVar(&processCampaign, "campaign", "", "Match files against this campaign only")
}

// match is a file paired with the campaign and automation that claim it.
type match struct {
	campaign   *config.CampaignConfig
	automation string
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess() error {
	startTime := time.Now()
	summary := utils.ProcessingSummary{RunID: runID, StartTime: startTime}

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	candidates, err := selectCampaigns()
	if err != nil {
		return err
	}

	inputFiles, err := discoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	if len(inputFiles) == 0 {
		fmt.Println("No supported input files found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 2: MATCH AND RUN
	// =========================================================================

	runner := automation.New(mainConfig, logger, recorder)
	summary.TotalFiles = len(inputFiles)

	for _, path := range inputFiles {
		m, ok := findMatch(path, candidates)
		if !ok {
			logger.Warn("no campaign matches file", zap.String("file", filepath.Base(path)))
			fmt.Printf("SKIPPED: %s (no matching campaign pattern)\n", filepath.Base(path))
			summary.SkippedFiles++
			continue
		}

		result := runner.Run(automation.Request{
			InputPath:  path,
			Automation: m.automation,
			Campaign:   m.campaign,
			DryRun:     processDryRun,
		})

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRows += result.Stats.SourceRows
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   result.FilePath,
				Campaign:    result.Campaign,
				Automation:  result.Automation,
				OutputFiles: result.OutputFiles,
				Rows:        result.Stats.SourceRows,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Printf("SUCCESS: %s [%s/%s] -> %d file(s)\n",
				filepath.Base(path), result.Campaign, result.Automation, len(result.OutputFiles))
		} else {
			summary.FailedFiles++
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    result.FilePath,
				ErrorMessage: result.Error.Error(),
			})
			fmt.Printf("FAILED:  %s [%s/%s] - %v\n",
				filepath.Base(path), result.Campaign, result.Automation, result.Error)
		}
	}

	// =========================================================================
	// STEP 3: SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()

	fmt.Println("\n========================================")
	fmt.Println("Processing Complete")
	fmt.Println("========================================")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Failed:          %d\n", summary.FailedFiles)
	fmt.Printf("Skipped:         %d\n", summary.SkippedFiles)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime))

	if !processDryRun {
		summaryPath, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			logger.Warn("failed to write summary log", zap.Error(err))
		} else {
			fmt.Printf("Summary log:     %s\n", summaryPath)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// discoverInputFiles returns --file when given, else every file in input_dir
// the reader can load.
func discoverInputFiles() ([]string, error) {
	if processFile != "" {
		return []string{processFile}, nil
	}
	fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
	return fm.DiscoverInputFiles(reader.Supported)
}

// selectCampaigns returns the campaigns to match against, in code order.
func selectCampaigns() ([]*config.CampaignConfig, error) {
	if processCampaign != "" {
		c, err := resolveCampaign(processCampaign)
		if err != nil {
			return nil, err
		}
		return []*config.CampaignConfig{c}, nil
	}

	list := make([]*config.CampaignConfig, 0, len(campaigns))
	for _, code := range campaignCodes() {
		list = append(list, campaigns[code])
	}
	return list, nil
}

// findMatch returns the first campaign whose patterns claim the file.
func findMatch(path string, candidates []*config.CampaignConfig) (match, bool) {
	for _, c := range candidates {
		if a, ok := c.MatchAutomation(path); ok {
			return match{campaign: c, automation: a}, true
		}
	}
	return match{}, false
}
