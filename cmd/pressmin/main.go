// Package main implements the pressmin command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"pressmin/config"
	"pressmin/internal/app"
	"pressmin/internal/minify"
	"pressmin/internal/ui"
	"pressmin/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "pressmin",
	Short: "CSS and JavaScript minifier with a content-addressed cache",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Info())
	},
}

var (
	minifyStdout   bool
	minifyExclude  []string
	minifyMaxBytes int
)

var minifyCmd = &cobra.Command{
	Use:   "minify <file>...",
	Short: "Minify CSS or JavaScript files",
	Long: "Minify the given files, writing each result next to its source\n" +
		"as <name>.min.<ext>. The language is chosen by file extension.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m := minify.New(minify.Options{
			MaxInputBytes: minifyMaxBytes,
			Exclude:       minifyExclude,
		})

		var failed int
		for _, path := range args {
			if err := minifyFile(m, path); err != nil {
				ui.PrintError("%s: %v", path, err)
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(args))
		}
		return nil
	},
}

func minifyFile(m *minify.Minifier, path string) error {
	lang, err := languageFor(path)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	handle := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	res := m.Minify(minify.Request{
		Language: lang,
		Handle:   handle,
		RawText:  string(raw),
	})

	if minifyStdout {
		fmt.Print(res.OutputText)
		return nil
	}

	out := outputPath(path)
	if err := os.WriteFile(out, []byte(res.OutputText), 0o644); err != nil {
		return err
	}
	if res.Succeeded {
		ui.PrintSuccess("%s → %s (saved %d bytes)", path, out, res.BytesSaved)
	} else {
		ui.PrintWarning("%s → %s (copied unchanged: %s)", path, out, res.Cause)
	}
	return nil
}

func languageFor(path string) (minify.Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return minify.LangCSS, nil
	case ".js", ".mjs":
		return minify.LangJS, nil
	default:
		return "", fmt.Errorf("cannot infer language from extension %q", filepath.Ext(path))
	}
}

func outputPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".min" + ext
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache entry count and size for the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := app.NewStore(cmd.Context(), cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := store.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(ui.Header("Cache"))
		ui.PrintKeyValue("backend", cfg.Cache.Backend)
		ui.PrintKeyValue("entries", fmt.Sprintf("%d", stats.EntryCount))
		ui.PrintKeyValue("bytes", fmt.Sprintf("%d", stats.TotalBytes))
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the configured cache backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := app.NewStore(cmd.Context(), cfg.Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		ui.PrintSuccess("cache cleared (%s backend)", cfg.Cache.Backend)
		return nil
	},
}

func init() {
	minifyCmd.Flags().BoolVar(&minifyStdout, "stdout", false, "write minified output to stdout instead of files")
	minifyCmd.Flags().StringSliceVar(&minifyExclude, "exclude", nil, "handle patterns to skip (glob or substring)")
	minifyCmd.Flags().IntVar(&minifyMaxBytes, "max-bytes", 0, "input size cap in bytes (0 uses the built-in limit)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(minifyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.PrintError("%v", err)
		os.Exit(1)
	}
}
