// =============================================================================
// Collections Automation - Root Command
// =============================================================================
//
// This file defines the root command of the CLI. Every automation command is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (automation)
//   ├── curedListCmd (automation cured-list FILE)
//   ├── updatesCmd   (automation updates FILE)
//   ├── uploadsCmd   (automation uploads FILE)
//   ├── cleanCmd     (automation clean FILE)
//   ├── processCmd   (automation process)
//   └── versionCmd   (automation version)
//
// RUNTIME:
//   Before any command runs, the root command:
//   1. Loads the main configuration and the campaign configurations
//   2. Builds the logger, tagged with a run ID
//   3. Creates the metrics recorder
//   After the command, metrics are written and the logger is flushed.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ginjaninja78/collections-automation/internal/config"
	"github.com/ginjaninja78/collections-automation/internal/logging"
	"github.com/ginjaninja78/collections-automation/internal/metrics"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// Runtime state shared by the commands. Set by initRuntime.
var (
	mainConfig  *config.MainConfig
	campaigns   map[string]*config.CampaignConfig
	logger      = zap.NewNop()
	closeLogger = func() {}
	recorder    *metrics.Recorder
	runID       string
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "automation",
	Short: "Collections Automation - Cured list, endorsement, and cleaning automations",
	Long: `Collections Automation turns the daily spreadsheet extracts of a loan
collection campaign into the files the collection system imports.

Automations:
  cured-list  Expand a cured list into remarks, reshuffle, and payments files
  updates     Remap an endorsement file for account updates
  uploads     Remap a new endorsement file for upload
  clean       Trim, de-duplicate, and drop blank rows of any sheet

Example Usage:
  automation cured-list "CURED LIST.xlsx"      # Run one automation on one file
  automation cured-list cured.xlsx --dry-run  # Show row counts only
  automation process                          # Run every matching file in input_dir
  automation process --config ./prod.yaml     # Use a custom configuration file`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime()
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. Called by main.main().
func Execute() {
	err := rootCmd.Execute()
	shutdownRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initRuntime loads configuration and builds the logger and metrics recorder.
func initRuntime() error {
	var err error

	mainConfig, err = config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main configuration: %w", err)
	}

	campaigns, err = config.LoadCampaignConfigs(mainConfig.CampaignsDir)
	if err != nil {
		return fmt.Errorf("failed to load campaign configurations: %w", err)
	}

	level := mainConfig.LogLevel
	if verbose {
		level = "debug"
	}
	base, closeFn, err := logging.New(level, mainConfig.LogFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	runID = uuid.New().String()
	logger = base.With(zap.String("run_id", runID))
	closeLogger = closeFn
	recorder = metrics.NewRecorder()

	logger.Debug("runtime initialized",
		zap.String("config", cfgFile),
		zap.String("campaigns_dir", mainConfig.CampaignsDir),
		zap.Strings("campaigns", campaignCodes()),
	)
	return nil
}

// shutdownRuntime writes metrics and flushes the logger.
func shutdownRuntime() {
	if mainConfig != nil {
		if err := recorder.WriteTextfile(mainConfig.MetricsFile); err != nil {
			logger.Warn("failed to write metrics", zap.Error(err))
		}
	}
	closeLogger()
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// resolveCampaign returns the campaign for a code, or the default campaign
// when code is empty. Codes are matched case-insensitively.
func resolveCampaign(code string) (*config.CampaignConfig, error) {
	if code == "" {
		code = mainConfig.DefaultCampaign
	}
	for key, c := range campaigns {
		if strings.EqualFold(key, code) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown campaign %q (available: %s)", code, strings.Join(campaignCodes(), ", "))
}

// campaignCodes returns the loaded campaign codes in sorted order.
func campaignCodes() []string {
	codes := make([]string, 0, len(campaigns))
	for code := range campaigns {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
