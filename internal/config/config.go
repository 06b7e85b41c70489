// =============================================================================
// Collections Automation - Configuration Module
// =============================================================================
//
// This module loads the main application configuration and the per-campaign
// configurations.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, metrics, cleaning
//   2. Campaign Configs (campaigns/*.yaml): automations allowed per campaign,
//      file matching, cured list layout, output file names
//
// Built-in campaigns (BPI, NONE, ROB_BIKE) are always available; a campaign
// file with the same code replaces the built-in definition.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// AUTOMATIONS
// =============================================================================

// Automation names.
const (
	AutomationClean     = "clean"
	AutomationUpdates   = "updates"
	AutomationUploads   = "uploads"
	AutomationCuredList = "cured-list"
)

// Automations lists every known automation.
var Automations = []string{
	AutomationClean,
	AutomationUpdates,
	AutomationUploads,
	AutomationCuredList,
}

// IsAutomation reports whether name is a known automation.
func IsAutomation(name string) bool {
	for _, a := range Automations {
		if a == name {
			return true
		}
	}
	return false
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the root of the automation work directories.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed input files when ArchiveInput is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// CampaignsDir contains the per-campaign YAML files.
	// Default: "./campaigns"
	CampaignsDir string `yaml:"campaigns_dir"`

	// =========================================================================
	// LOGGING AND METRICS
	// =========================================================================

	// LogFile receives JSON logs in addition to the console. Empty disables
	// file logging.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// MetricsFile receives run metrics in the Prometheus text format after
	// each command. Empty disables it.
	MetricsFile string `yaml:"metrics_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// DefaultCampaign is used when a command does not name a campaign.
	// Default: "BPI"
	DefaultCampaign string `yaml:"default_campaign"`

	// Cleaning holds the cleaning options applied before every automation.
	Cleaning CleaningSettings `yaml:"cleaning"`

	// ArchiveInput moves processed input files into InputArchiveDir.
	ArchiveInput bool `yaml:"archive_input"`
}

// CleaningSettings selects the optional cleaning steps.
type CleaningSettings struct {
	RemoveDuplicates bool `yaml:"remove_duplicates"`
	RemoveBlanks     bool `yaml:"remove_blanks"`
	TrimSpaces       bool `yaml:"trim_spaces"`
}

// =============================================================================
// CAMPAIGN CONFIGURATION STRUCTURE
// =============================================================================

// CampaignConfig holds the configuration of one collection campaign.
type CampaignConfig struct {
	// CampaignName is the human-readable name used in logs.
	CampaignName string `yaml:"campaign_name"`

	// CampaignCode identifies the campaign on the command line and in
	// output file names.
	CampaignCode string `yaml:"campaign_code"`

	// Automations lists the automations this campaign allows.
	// Default: ["clean"]
	Automations []string `yaml:"automations"`

	// FileMatchingPatterns maps input file names to automations for the
	// process command. The first matching pattern wins.
	//
	// Example:
	//   - pattern: "CURED*.xlsx"
	//     automation: cured-list
	FileMatchingPatterns []FilePattern `yaml:"file_matching_patterns"`

	// SpecialCollector is the collector code routed to the special
	// collector category of the cured list.
	// Default: "SPMADRID"
	SpecialCollector string `yaml:"special_collector"`

	// Layout holds the 1-based cured list column positions.
	Layout LayoutSettings `yaml:"layout"`

	// Source holds settings for reading input files.
	Source SourceSettings `yaml:"source"`

	// FileNames holds output file name formats.
	// Placeholders:
	//   {date}      - Run date (MMDDYYYY)
	//   {timestamp} - Run time (YYYYMMDD_HHMMSS)
	//   {uuid}      - A random UUID
	//   {campaign}  - Campaign code
	//   {original}  - Input file name without extension
	FileNames FileNameSettings `yaml:"file_names"`

	// Manipulations are column operations run by the clean automation before
	// cleaning, in order.
	//
	// Example:
	//   - type: add_column
	//     column: ACCOUNT
	//     source: LAN
	//     actions:
	//       - type: prepend_string
	//         value: "BPI-"
	//   - type: remove_columns
	//     columns: [REMARKS]
	//   - type: filter_rows
	//     column: STATUS
	//     value: active
	Manipulations []Manipulation `yaml:"manipulations"`
}

// FilePattern maps a glob pattern to an automation.
type FilePattern struct {
	Pattern    string `yaml:"pattern"`
	Automation string `yaml:"automation"`
}

// Manipulation types.
const (
	ManipulationAddColumn     = "add_column"
	ManipulationRemoveColumns = "remove_columns"
	ManipulationRenameColumn  = "rename_column"
	ManipulationFilterRows    = "filter_rows"
)

// Filter match modes.
const (
	MatchContains = "contains"
	MatchEquals   = "equals"
)

// TransformationTypes lists the supported transformation action types.
var TransformationTypes = []string{"prepend_string", "append_string", "uppercase", "lowercase", "trim"}

// Manipulation is one column operation.
type Manipulation struct {
	// Type is one of:
	//   - "add_column"     : Column is filled with Value, or copied from Source
	//                        and passed through Actions
	//   - "remove_columns" : every header in Columns is dropped
	//   - "rename_column"  : Column is renamed to Value
	//   - "filter_rows"    : rows whose Column matches Value are kept
	Type string `yaml:"type"`

	Column  string   `yaml:"column"`
	Source  string   `yaml:"source"`
	Value   string   `yaml:"value"`
	Columns []string `yaml:"columns"`

	// Match selects how filter_rows compares text: "contains" (default) or
	// "equals". Both ignore case.
	Match string `yaml:"match"`

	// Actions are applied in order to each copied value.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation of a text value.
type TransformationAction struct {
	// Type is one of TransformationTypes.
	Type string `yaml:"type"`

	// Value is the text to prepend or append.
	Value string `yaml:"value"`
}

// LayoutSettings holds 1-based source column positions.
type LayoutSettings struct {
	Barcode    int `yaml:"barcode"`
	Collector  int `yaml:"collector"`
	Date       int `yaml:"date"`
	Amount     int `yaml:"amount"`
	ActionFlag int `yaml:"action_flag"`
	LAN        int `yaml:"lan"`
	Name       int `yaml:"name"`
	Phone1     int `yaml:"phone1"`
	Phone2     int `yaml:"phone2"`
	MinColumns int `yaml:"min_columns"`
}

// SourceSettings controls how input files are read.
type SourceSettings struct {
	// Sheet selects the worksheet. Empty means the first sheet.
	Sheet string `yaml:"sheet"`

	// Delimiter separates fields in .csv inputs.
	// Default: ","
	Delimiter string `yaml:"delimiter"`
}

// FileNameSettings holds output file name formats per automation.
type FileNameSettings struct {
	Remarks        string `yaml:"remarks"`
	Reshuffle      string `yaml:"reshuffle"`
	Payments       string `yaml:"payments"`
	CuredListInput string `yaml:"cured_list_input"`
	Updates        string `yaml:"updates"`
	UpdatesInput   string `yaml:"updates_input"`
	Uploads        string `yaml:"uploads"`
	UploadsInput   string `yaml:"uploads_input"`
	Clean          string `yaml:"clean"`
}

// Allows reports whether the campaign permits an automation.
func (c *CampaignConfig) Allows(automation string) bool {
	for _, a := range c.Automations {
		if a == automation {
			return true
		}
	}
	return false
}

// MatchAutomation returns the automation of the first pattern matching the
// base name of fileName. Matching is case-insensitive.
func (c *CampaignConfig) MatchAutomation(fileName string) (string, bool) {
	base := strings.ToLower(filepath.Base(fileName))
	for _, p := range c.FileMatchingPatterns {
		ok, err := filepath.Match(strings.ToLower(p.Pattern), base)
		if err == nil && ok {
			return p.Automation, true
		}
	}
	return "", false
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig reads and validates the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to config.yaml. A missing file yields defaults.
//
// RETURNS:
//   - The loaded configuration with defaults applied.
//   - An error if the file cannot be parsed or is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for unset fields.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.CampaignsDir == "" {
		config.CampaignsDir = "./campaigns"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.DefaultCampaign == "" {
		config.DefaultCampaign = "BPI"
	}
}

func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}
	return nil
}

// LoadCampaignConfigs loads every *.yaml / *.yml file in campaignsDir on top
// of the built-in campaigns. A missing directory yields the built-ins only.
//
// RETURNS:
//   - Campaigns keyed by campaign code.
//   - An error if any file cannot be parsed or is invalid.
func LoadCampaignConfigs(campaignsDir string) (map[string]*CampaignConfig, error) {
	configs := DefaultCampaigns()

	files, err := filepath.Glob(filepath.Join(campaignsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(campaignsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	for _, file := range files {
		config, err := loadCampaignConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		configs[config.CampaignCode] = config
	}

	return configs, nil
}

func loadCampaignConfig(filePath string) (*CampaignConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config CampaignConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if config.CampaignCode == "" {
		base := filepath.Base(filePath)
		config.CampaignCode = strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	applyCampaignConfigDefaults(&config)

	if err := validateCampaignConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyCampaignConfigDefaults sets default values for a campaign.
func applyCampaignConfigDefaults(config *CampaignConfig) {
	if config.CampaignName == "" {
		config.CampaignName = config.CampaignCode
	}
	if len(config.Automations) == 0 {
		config.Automations = []string{AutomationClean}
	}
	if config.SpecialCollector == "" {
		config.SpecialCollector = "SPMADRID"
	}
	if config.Source.Delimiter == "" {
		config.Source.Delimiter = ","
	}

	l := &config.Layout
	d := DefaultLayout()
	setDefault(&l.Barcode, d.Barcode)
	setDefault(&l.Collector, d.Collector)
	setDefault(&l.Date, d.Date)
	setDefault(&l.Amount, d.Amount)
	setDefault(&l.ActionFlag, d.ActionFlag)
	setDefault(&l.LAN, d.LAN)
	setDefault(&l.Name, d.Name)
	setDefault(&l.Phone1, d.Phone1)
	setDefault(&l.Phone2, d.Phone2)
	setDefault(&l.MinColumns, d.MinColumns)

	n := &config.FileNames
	dn := DefaultFileNames()
	setDefaultString(&n.Remarks, dn.Remarks)
	setDefaultString(&n.Reshuffle, dn.Reshuffle)
	setDefaultString(&n.Payments, dn.Payments)
	setDefaultString(&n.CuredListInput, dn.CuredListInput)
	setDefaultString(&n.Updates, dn.Updates)
	setDefaultString(&n.UpdatesInput, dn.UpdatesInput)
	setDefaultString(&n.Uploads, dn.Uploads)
	setDefaultString(&n.UploadsInput, dn.UploadsInput)
	setDefaultString(&n.Clean, dn.Clean)
}

func validateCampaignConfig(config *CampaignConfig) error {
	for _, a := range config.Automations {
		if !IsAutomation(a) {
			return fmt.Errorf("campaign %s: unknown automation %q", config.CampaignCode, a)
		}
	}
	for _, p := range config.FileMatchingPatterns {
		if _, err := filepath.Match(p.Pattern, ""); err != nil {
			return fmt.Errorf("campaign %s: bad pattern %q: %w", config.CampaignCode, p.Pattern, err)
		}
		if !config.Allows(p.Automation) {
			return fmt.Errorf("campaign %s: pattern %q maps to automation %q which the campaign does not allow",
				config.CampaignCode, p.Pattern, p.Automation)
		}
	}
	for i, m := range config.Manipulations {
		if err := validateManipulation(m); err != nil {
			return fmt.Errorf("campaign %s: manipulation %d (%s): %w", config.CampaignCode, i+1, m.Type, err)
		}
	}
	return nil
}

func validateManipulation(m Manipulation) error {
	switch m.Type {
	case ManipulationAddColumn:
		if m.Column == "" {
			return errors.New("column is required")
		}
		if m.Source == "" && len(m.Actions) > 0 {
			return errors.New("actions need a source column")
		}
		for _, a := range m.Actions {
			if !contains(TransformationTypes, a.Type) {
				return fmt.Errorf("unknown transformation %q", a.Type)
			}
		}
	case ManipulationRemoveColumns:
		if len(m.Columns) == 0 {
			return errors.New("columns is required")
		}
	case ManipulationRenameColumn:
		if m.Column == "" || m.Value == "" {
			return errors.New("column and value are required")
		}
	case ManipulationFilterRows:
		if m.Column == "" || m.Value == "" {
			return errors.New("column and value are required")
		}
		if m.Match != "" && m.Match != MatchContains && m.Match != MatchEquals {
			return fmt.Errorf("unknown match %q", m.Match)
		}
	default:
		return fmt.Errorf("unknown manipulation type %q", m.Type)
	}
	return nil
}

// =============================================================================
// BUILT-IN CAMPAIGNS
// =============================================================================

// DefaultLayout returns the BPI cured list column positions.
func DefaultLayout() LayoutSettings {
	return LayoutSettings{
		Barcode:    1,
		Collector:  2,
		Date:       3,
		Amount:     4,
		ActionFlag: 8,
		LAN:        17,
		Name:       18,
		Phone1:     42,
		Phone2:     43,
		MinColumns: 43,
	}
}

// DefaultFileNames returns the BPI output file names.
func DefaultFileNames() FileNameSettings {
	return FileNameSettings{
		Remarks:        "BPI AUTOCURING REMARKS {date}.xlsx",
		Reshuffle:      "BPI AUTOCURING RESHUFFLE {date}.xlsx",
		Payments:       "BPI AUTOCURING PAYMENT {date}.xlsx",
		CuredListInput: "CURED LIST {date}.xlsx",
		Updates:        "BPI AUTO CURING FOR UPDATES {date}.xlsx",
		UpdatesInput:   "FOR UPDATE {date}.xlsx",
		Uploads:        "BPI AUTO CURING FOR UPLOADS {date}.xlsx",
		UploadsInput:   "FOR UPLOAD (NEW ENDO) {date}.xlsx",
		Clean:          "{original}.xlsx",
	}
}

// DefaultCampaigns returns the built-in campaigns keyed by code.
func DefaultCampaigns() map[string]*CampaignConfig {
	bpi := &CampaignConfig{
		CampaignName: "BPI",
		CampaignCode: "BPI",
		Automations:  []string{AutomationClean, AutomationUploads, AutomationUpdates, AutomationCuredList},
		FileMatchingPatterns: []FilePattern{
			{Pattern: "cured*.xlsx", Automation: AutomationCuredList},
			{Pattern: "*for update*.xlsx", Automation: AutomationUpdates},
			{Pattern: "*for upload*.xlsx", Automation: AutomationUploads},
			{Pattern: "*new endo*.xlsx", Automation: AutomationUploads},
		},
	}
	none := &CampaignConfig{CampaignName: "No Campaign", CampaignCode: "NONE"}
	rob := &CampaignConfig{CampaignName: "ROB Bike", CampaignCode: "ROB_BIKE"}

	configs := make(map[string]*CampaignConfig, 3)
	for _, c := range []*CampaignConfig{bpi, none, rob} {
		applyCampaignConfigDefaults(c)
		configs[c.CampaignCode] = c
	}
	return configs
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func setDefault(v *int, def int) {
	if *v == 0 {
		*v = def
	}
}

func setDefaultString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
