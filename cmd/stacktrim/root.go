// Package main provides the stacktrim CLI application.
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/grahms/stacktrim"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command; the command itself is the filter.
var rootCmd = &cobra.Command{
	Use:   "stacktrim [file...]",
	Short: "Prune stack traces down to the frames that matter",
	Long: `stacktrim reads stack trace text, keeps the frames matching an
ordered keyword list, and collapses everything else into "... N more"
summary lines. Header lines always survive. With no file arguments it
filters stdin, like grep.`,
	Args:    cobra.ArbitraryArgs,
	Version: version,
	RunE:    runRoot,
}

// rootFlags holds the flags for the root command.
type rootFlags struct {
	keywords   []string
	profile    string
	properties string
	noPrune    bool
	output     string
	verbose    bool
}

var rootOpts rootFlags

func init() {
	rootCmd.Flags().StringArrayVarP(&rootOpts.keywords, "keyword", "k", nil, "Frame keyword to keep (repeatable, order matters)")
	rootCmd.Flags().StringVar(&rootOpts.profile, "profile", "", "Path to a YAML pruning profile")
	rootCmd.Flags().StringVar(&rootOpts.properties, "properties", "", "Path to a Java-style .properties bundle")
	rootCmd.Flags().BoolVar(&rootOpts.noPrune, "no-prune", false, "Copy input through without pruning")
	rootCmd.Flags().StringVarP(&rootOpts.output, "output", "o", "", "Write output to a file instead of stdout")
	rootCmd.Flags().BoolVarP(&rootOpts.verbose, "verbose", "v", false, "Verbose diagnostics on stderr")
}

// Execute runs the root command. It is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func runRoot(cmd *cobra.Command, args []string) error {
	initLogging(rootOpts.verbose)

	p, err := buildPruner()
	if err != nil {
		return err
	}

	w := io.Writer(os.Stdout)
	if rootOpts.output != "" {
		f, err := os.Create(rootOpts.output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	if len(args) == 0 {
		slog.Debug("pruning stdin")
		return p.PruneTo(w, os.Stdin)
	}
	for _, path := range args {
		if err := pruneFile(p, w, path); err != nil {
			return err
		}
	}
	return nil
}

// buildPruner assembles options from the profile, the properties bundle and
// the flags. Later options win, so flags override the profile and --no-prune
// overrides everything.
func buildPruner() (*stacktrim.Pruner, error) {
	var opts []stacktrim.Option
	if rootOpts.profile != "" {
		pr, err := stacktrim.LoadProfile(rootOpts.profile)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded profile", "path", rootOpts.profile, "keywords", len(pr.Keywords), "disabled", pr.Disabled)
		opts = append(opts, pr.Options()...)
	}
	if rootOpts.properties != "" {
		src, err := stacktrim.LoadProperties(rootOpts.properties)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stacktrim.WithSource(src))
		if v, ok := src.Lookup(stacktrim.PruningEnabledKey); ok && v == "true" {
			slog.Warn("legacy key disables pruning, output will be an unpruned copy",
				"key", stacktrim.PruningEnabledKey, "path", rootOpts.properties)
		}
	}
	if len(rootOpts.keywords) > 0 {
		opts = append(opts, stacktrim.WithKeywords(rootOpts.keywords...))
	}
	if rootOpts.noPrune {
		opts = append(opts, stacktrim.WithSource(stacktrim.MapSource{stacktrim.PruningEnabledKey: "true"}))
	}
	return stacktrim.New(opts...), nil
}

func pruneFile(p *stacktrim.Pruner, w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	slog.Debug("pruning file", "path", path)
	return p.PruneTo(w, f)
}

// initLogging sets the package-level default slog logger, warnings and up
// by default, everything when verbose. Diagnostics go to stderr so they
// never mix with pruned output on stdout.
func initLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
