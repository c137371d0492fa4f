package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/interpretive-systems/stagium/internal/config"
	"github.com/interpretive-systems/stagium/internal/gitx"
	"github.com/interpretive-systems/stagium/internal/tui"
)

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:   "stagium",
		Short: "Interactive staging TUI for git",
		Long:  "Stagium: stage, unstage, and discard changes down to single lines, then commit, all from one keyboard-driven view.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoPath := mustGetStringFlag(cmd, "repo")
			cfgPath := mustGetStringFlag(cmd, "config")

			repoRoot, err := gitx.RepoRoot(repoPath)
			if err != nil {
				if !promptInit(repoPath) {
					return fmt.Errorf("not a git repository: %s", repoPath)
				}
				if err := gitx.InitRepo(repoPath); err != nil {
					return err
				}
				repoRoot, err = gitx.RepoRoot(repoPath)
				if err != nil {
					return err
				}
			}

			if cfgPath == "" {
				cfgPath = config.DefaultPath()
			}
			cfg, warnings, err := config.Load(cfgPath)
			if err != nil {
				warnings = append(warnings, err.Error())
			}
			if w := localeWarning(); w != "" {
				warnings = append(warnings, w)
			}
			return tui.Run(repoRoot, cfg, warnings)
		},
	}

	root.Flags().StringP("repo", "r", ".", "Path to repository root (default: current dir)")
	root.Flags().StringP("config", "c", "", "Path to config file (default: the user config dir)")

	if err := root.Execute(); err != nil {
		return fmt.Errorf("execute: %w", err)
	}
	return nil
}

// promptInit asks, on plain stdio before the TUI starts, whether to turn
// the directory into a repository.
func promptInit(path string) bool {
	fmt.Fprintf(os.Stderr, "%s is not a git repository. Initialize one? [y/N] ", path)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// localeWarning flags a non-English locale. Porcelain output is stable,
// but branch errors and shell command output are localized and may read
// oddly inside notices.
func localeWarning() string {
	lang := os.Getenv("LC_ALL")
	if lang == "" {
		lang = os.Getenv("LANG")
	}
	switch {
	case lang == "", lang == "C", strings.HasPrefix(lang, "C."), strings.HasPrefix(lang, "en"):
		return ""
	default:
		return "locale " + lang + " detected; git messages may be localized"
	}
}

func mustGetStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, "flag error:", err)
		os.Exit(2)
	}
	return v
}
