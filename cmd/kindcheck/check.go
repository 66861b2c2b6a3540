package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kindcheck/internal/diagfmt"
	"kindcheck/internal/driver"
	"kindcheck/internal/kind"
	"kindcheck/internal/project"
	"kindcheck/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.kd|directory>",
	Short: "Run kind diagnostics on a source file or directory",
	Long:  `Check kind declarations for arity, parameter shape, and variance violations in a single file or all *.kd files within a directory`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory checking (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show fix edit previews alongside suggestions")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().Bool("disk-cache", false, "reuse diagnostics for unchanged files from the persistent cache")
	checkCmd.Flags().Bool("no-config", false, "ignore kindcheck.toml manifests")
}

// projectRegistry walks up from startDir looking for kindcheck.toml and
// builds the manifest registry on top of the built-ins. Registration
// issues go to stderr; the usable part of the manifest still applies.
// The second return value is the manifest's diagnostics cap, 0 when no
// manifest was found.
func projectRegistry(startDir string, quiet bool) (*kind.Registry, int, error) {
	manifestPath, ok, err := project.FindManifest(startDir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to locate manifest: %w", err)
	}
	if !ok {
		return nil, 0, nil
	}
	cfg, err := project.LoadConfig(manifestPath)
	if err != nil {
		return nil, 0, err
	}
	registry, issues := project.BuildRegistry(cfg)
	if !quiet {
		for _, d := range driver.ConfigDiagnostics(issues) {
			fmt.Fprintf(os.Stderr, "%s: %s: %s\n", manifestPath, d.Code.ID(), d.Message)
		}
	}
	return registry, cfg.Project.MaxDiagnostics, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	suggest, err := cmd.Flags().GetBool("suggest")
	if err != nil {
		return fmt.Errorf("failed to get suggest flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}
	noConfig, err := cmd.Flags().GetBool("no-config")
	if err != nil {
		return fmt.Errorf("failed to get no-config flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	switch format {
	case "pretty", "json":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	st, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	startDir := targetPath
	if !st.IsDir() {
		startDir = filepath.Dir(targetPath)
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		AttachFixes:    suggest || preview,
	}
	if !noConfig {
		registry, manifestCap, err := projectRegistry(startDir, quiet)
		if err != nil {
			return err
		}
		opts.Registry = registry
		if opts.MaxDiagnostics <= 0 {
			opts.MaxDiagnostics = manifestCap
		}
	}
	if enableDiskCache {
		cache, err := driver.OpenDiskCache("kindcheck")
		if err != nil {
			fmt.Fprintf(os.Stderr, "disk cache unavailable: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	showFixes := suggest || preview
	prettyOpts := diagfmt.PrettyOpts{
		Color:       useColor,
		PathMode:    pathMode,
		ShowNotes:   withNotes,
		ShowFixes:   showFixes,
		ShowPreview: preview,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         pathMode,
		IncludeNotes:     withNotes,
		IncludeFixes:     showFixes,
		IncludePreviews:  preview,
	}

	var exitCode int
	if st.IsDir() {
		jobs, err := cmd.Flags().GetInt("jobs")
		if err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
		opts.Jobs = jobs
		exitCode, err = checkDir(cmd, targetPath, opts, format, quiet, fullPath, prettyOpts, jsonOpts)
		if err != nil {
			return err
		}
	} else {
		exitCode, err = checkFile(cmd, targetPath, opts, format, prettyOpts, jsonOpts)
		if err != nil {
			return err
		}
	}

	if exitCode != 0 {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("")
	}
	return nil
}

func checkFile(cmd *cobra.Command, path string, opts driver.Options, format string, prettyOpts diagfmt.PrettyOpts, jsonOpts diagfmt.JSONOpts) (int, error) {
	fs := source.NewFileSetWithBase(filepath.Dir(path))
	fileID, err := fs.Load(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load %s: %w", path, err)
	}

	res := driver.CheckFile(cmd.Context(), fs, fileID, opts)

	exit := 0
	if res.Bag.HasErrors() {
		exit = 1
	}

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, res.Bag, fs, prettyOpts)
	case "json":
		if err := diagfmt.JSON(os.Stdout, res.Bag, fs, jsonOpts); err != nil {
			return 0, fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}
	return exit, nil
}

func checkDir(cmd *cobra.Command, path string, opts driver.Options, format string, quiet, fullPath bool, prettyOpts diagfmt.PrettyOpts, jsonOpts diagfmt.JSONOpts) (int, error) {
	fs, results, err := driver.CheckDir(cmd.Context(), path, opts)
	if err != nil {
		return 0, fmt.Errorf("check failed: %w", err)
	}

	exit := 0
	for _, r := range results {
		if r.Bag.HasErrors() {
			exit = 1
			break
		}
	}

	switch format {
	case "pretty":
		printed := 0
		for _, r := range results {
			if quiet && r.Bag.Len() == 0 {
				continue
			}
			if printed > 0 {
				fmt.Fprintln(os.Stdout)
			}
			printed++
			fmt.Fprintf(os.Stdout, "== %s ==\n", displayPath(fs, r, fullPath))
			diagfmt.Pretty(os.Stdout, r.Bag, fs, prettyOpts)
		}
	case "json":
		output := make(map[string]diagfmt.DiagnosticsOutput, len(results))
		for _, r := range results {
			output[displayPath(fs, r, fullPath)] = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return 0, fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
	}
	return exit, nil
}

func displayPath(fs *source.FileSet, r driver.FileResult, fullPath bool) string {
	if f := fs.Get(r.FileID); f != nil {
		mode := "auto"
		if fullPath {
			mode = "absolute"
		}
		return f.FormatPath(mode, fs.BaseDir())
	}
	return r.Path
}
