package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"kindcheck/internal/diag"
	"kindcheck/internal/driver"
	"kindcheck/internal/fix"
	"kindcheck/internal/source"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.kd|directory>",
	Short: "Apply available fixes to a source file or directory",
	Long:  "Run kind diagnostics, surface available fixes, and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("no-config", false, "ignore kindcheck.toml manifests")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	noConfig, err := cmd.Flags().GetBool("no-config")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnceFlag) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnceFlag {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	applyOpts := fix.ApplyOptions{
		Mode:     mode,
		TargetID: targetID,
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	// Fix identifiers are stable only within one file's diagnostics.
	if info.IsDir() && targetID != "" {
		return fmt.Errorf("fix: id can only be used with a single file")
	}

	startDir := targetPath
	if !info.IsDir() {
		startDir = filepath.Dir(targetPath)
	}

	driverOpts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		AttachFixes:    true,
	}
	if !noConfig {
		registry, manifestCap, err := projectRegistry(startDir, quiet)
		if err != nil {
			return err
		}
		driverOpts.Registry = registry
		if driverOpts.MaxDiagnostics <= 0 {
			driverOpts.MaxDiagnostics = manifestCap
		}
	}

	if !info.IsDir() {
		return runFixFile(cmd, targetPath, driverOpts, applyOpts)
	}
	return runFixDir(cmd, targetPath, driverOpts, applyOpts)
}

func runFixFile(cmd *cobra.Command, path string, driverOpts driver.Options, opts fix.ApplyOptions) error {
	fs := source.NewFileSetWithBase(filepath.Dir(path))
	fileID, err := fs.Load(path)
	if err != nil {
		return fmt.Errorf("fix: failed to load %s: %w", path, err)
	}

	res := driver.CheckFile(cmd.Context(), fs, fileID, driverOpts)
	applied, applyErr := fix.Apply(fs, res.Bag.Items(), opts)
	return handleApplyResult(applied, applyErr)
}

func runFixDir(cmd *cobra.Command, path string, driverOpts driver.Options, opts fix.ApplyOptions) error {
	fs, results, err := driver.CheckDir(cmd.Context(), path, driverOpts)
	if err != nil {
		return fmt.Errorf("fix: check failed: %w", err)
	}

	allDiagnostics := make([]diag.Diagnostic, 0)
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		allDiagnostics = append(allDiagnostics, r.Bag.Items()...)
	}

	applied, applyErr := fix.Apply(fs, allDiagnostics, opts)
	return handleApplyResult(applied, applyErr)
}

func handleApplyResult(res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		fmt.Fprintf(os.Stdout, "Applied %d fix(es):\n", len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(
				os.Stdout,
				"  %s [%s] %s (%d edits, %s)\n",
				item.Title,
				item.ID,
				location,
				item.EditCount,
				item.Applicability.String(),
			)
		}
	}

	if len(res.FileChanges) > 0 {
		fmt.Fprintln(os.Stdout, "Updated files:")
		for _, change := range res.FileChanges {
			fmt.Fprintf(os.Stdout, "  %s (%d edits)\n", change.Path, change.EditCount)
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(os.Stdout, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(os.Stdout, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(os.Stdout, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(os.Stdout, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		fmt.Fprintln(os.Stdout, "No fixes applied.")
	}
	return nil
}
