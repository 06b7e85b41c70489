// =============================================================================
// Collections Automation - File Manager Utilities
// =============================================================================
//
// This module provides file management utilities:
//   - Work directory layout per automation
//   - Input file discovery
//   - Input copies and archival
//   - Output file naming
//   - Processing summary logs
//
// WORK DIRECTORIES (under the output directory):
//   cured-list : CURED_LIST, BPI_FOR_REMARKS, BPI_FOR_PAYMENTS, BPI_FOR_OTHERS
//   updates    : FOR_UPDATES, BPI_FOR_UPDATES
//   uploads    : FOR_UPLOADS, BPI_FOR_UPLOADS
//   clean      : CLEANED
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Work directory names.
const (
	DirCuredList     = "CURED_LIST"
	DirForRemarks    = "BPI_FOR_REMARKS"
	DirForPayments   = "BPI_FOR_PAYMENTS"
	DirForOthers     = "BPI_FOR_OTHERS"
	DirForUpdates    = "FOR_UPDATES"
	DirBPIForUpdates = "BPI_FOR_UPDATES"
	DirForUploads    = "FOR_UPLOADS"
	DirBPIForUploads = "BPI_FOR_UPLOADS"
	DirCleaned       = "CLEANED"
)

// workDirs lists the work directories of each automation.
var workDirs = map[string][]string{
	"cured-list": {DirCuredList, DirForRemarks, DirForPayments, DirForOthers},
	"updates":    {DirForUpdates, DirBPIForUpdates},
	"uploads":    {DirForUploads, DirBPIForUploads},
	"clean":      {DirCleaned},
}

// WorkDirs returns the work directory names of an automation.
func WorkDirs(automation string) []string {
	return append([]string(nil), workDirs[automation]...)
}

// =============================================================================
// FILE MANAGER STRUCTURE
// =============================================================================

// FileManager handles file operations for the automations.
type FileManager struct {
	// InputDir is the directory scanned for input files.
	InputDir string

	// OutputDir is the root of the work directories.
	OutputDir string

	// InputArchiveDir receives processed input files.
	InputArchiveDir string
}

// NewFileManager creates a new FileManager.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// EnsureWorkDirs creates the work directories of an automation.
//
// RETURNS:
//   - Work directory paths keyed by directory name.
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureWorkDirs(automation string) (map[string]string, error) {
	names := workDirs[automation]
	if len(names) == 0 {
		return nil, fmt.Errorf("no work directories defined for automation %q", automation)
	}

	dirs := make(map[string]string, len(names))
	for _, name := range names {
		path := filepath.Join(fm.OutputDir, name)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", path, err)
		}
		dirs[name] = path
	}
	return dirs, nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists regular files in the input directory accepted by
// keep, sorted by name. Office lock files ("~$...") are skipped.
func (fm *FileManager) DiscoverInputFiles(keep func(path string) bool) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		path := filepath.Join(fm.InputDir, e.Name())
		if keep == nil || keep(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// =============================================================================
// COPY AND ARCHIVAL
// =============================================================================

// CopyFile copies src to dst, replacing dst.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dst, err)
	}
	return out.Close()
}

// ArchiveInputFile moves a processed input file into the archive directory.
// An existing archive of the same name is never overwritten; the new file
// gets a timestamp suffix instead.
//
// RETURNS:
//   - The path to the archived file.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if err := os.MkdirAll(fm.InputArchiveDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	archivePath := getArchivePath(fm.InputArchiveDir, filePath, time.Now())
	if err := os.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices.
		if err := CopyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to archive file: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove archived file: %w", err)
		}
	}
	return archivePath, nil
}

func getArchivePath(archiveDir, filePath string, now time.Time) string {
	fileName := filepath.Base(filePath)
	archivePath := filepath.Join(archiveDir, fileName)

	if _, err := os.Stat(archivePath); os.IsNotExist(err) {
		return archivePath
	}

	ext := filepath.Ext(fileName)
	base := strings.TrimSuffix(fileName, ext)
	return filepath.Join(archiveDir, fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), ext))
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a file name format.
//
// PARAMETERS:
//   - format: The file name format.
//             Placeholders:
//               {date}      - Run date (MMDDYYYY)
//               {timestamp} - Run time (YYYYMMDD_HHMMSS)
//               {uuid}      - A random UUID
//               any key of params, e.g. {campaign}, {original}
//   - now: The run time.
//   - params: Additional placeholder values.
//
// RETURNS:
//   - The generated file name, always ending in ".xlsx".
//
// EXAMPLE:
//   format: "BPI AUTOCURING REMARKS {date}.xlsx"
//   output: "BPI AUTOCURING REMARKS 01102024.xlsx"
func GenerateOutputFileName(format string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{date}":      now.Format("01022006"),
		"{timestamp}": now.Format("20060102_150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if !strings.HasSuffix(strings.ToLower(result), ".xlsx") {
		result += ".xlsx"
	}
	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// =============================================================================
// SUMMARY LOG
// =============================================================================

// ProcessingSummary contains the results of a batch run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	FailedFiles     int
	SkippedFiles    int
	TotalRows       int
	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes one successfully processed file.
type ProcessedFileInfo struct {
	InputFile   string
	Campaign    string
	Automation  string
	OutputFiles []string
	Rows        int
	ProcessTime time.Duration
}

// FailedFileInfo describes one failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a human-readable summary of a batch run into
// outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	summaryFileName := fmt.Sprintf("processing_summary_%s.txt", summary.EndTime.Format("20060102_150405"))
	summaryPath := filepath.Join(outputDir, summaryFileName)

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	fmt.Fprintf(w, "Collections Automation - Processing Summary\n%s\n\n", rule)
	fmt.Fprintf(w, "Run Information:\n")
	fmt.Fprintf(w, "  Run ID:         %s\n", summary.RunID)
	fmt.Fprintf(w, "  Start Time:     %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  End Time:       %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Duration:       %s\n\n", summary.EndTime.Sub(summary.StartTime))
	fmt.Fprintf(w, "Statistics:\n")
	fmt.Fprintf(w, "  Total Files:    %d\n", summary.TotalFiles)
	fmt.Fprintf(w, "  Successful:     %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(w, "  Failed:         %d\n", summary.FailedFiles)
	fmt.Fprintf(w, "  Skipped:        %d\n", summary.SkippedFiles)
	fmt.Fprintf(w, "  Total Rows:     %d\n\n", summary.TotalRows)

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintf(w, "Successful Files:\n%s\n", thin)
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(w, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(w, "  Campaign:     %s\n", pf.Campaign)
			fmt.Fprintf(w, "  Automation:   %s\n", pf.Automation)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(w, "  Output:       %s\n", out)
			}
			fmt.Fprintf(w, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(w, "  Process Time: %s\n\n", pf.ProcessTime)
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprintf(w, "Failed Files:\n%s\n", thin)
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(w, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(w, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	fmt.Fprintf(w, "%s\nEnd of Summary\n", rule)

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}
