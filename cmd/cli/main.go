package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

// Global flags
var (
	dbPath   string
	tempDir  string
	logLevel string
	logTime  bool
)

var rootCmd = &cobra.Command{
	Use:   "autotab",
	Short: "Harmonica tablature from live or recorded audio",
	Long: `autotab listens to a monophonic harmonica and prints the tab symbols
it hears for the chosen harmonica key. Tab text goes to stdout; logs go to
stderr.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetShowTime(logTime)
		if logLevel == "" {
			return nil
		}
		lvl, ok := logger.ParseLevel(logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", logLevel)
		}
		logger.SetLevel(lvl)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dbPath, "db", getEnvOrDefault("AUTOTAB_DB_PATH", "autotabber.sqlite3"), "Path to the SQLite recording history")
	pf.StringVar(&tempDir, "temp", getEnvOrDefault("AUTOTAB_TEMP_DIR", os.TempDir()), "Directory for temporary audio conversion files")
	pf.BoolVar(&logTime, "log-time", false, "Prefix log lines with a timestamp")
	pf.StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (env: AUTOTAB_LOG_LEVEL)")
}

// addTranscriptionFlags registers the pipeline flags shared by listen, file
// and measure. Values are read back per command because the commands use
// different defaults.
func addTranscriptionFlags(cmd *cobra.Command, defaultOverflow string) {
	f := cmd.Flags()
	f.StringP("key", "k", getEnvOrDefault("AUTOTAB_KEY", "C"), "Harmonica key")
	f.IntP("buffer-size", "b", 512, "Samples per analysis frame")
	f.IntP("count", "c", 4, "Identical frames required before a note is written")
	f.Float64P("min-volume", "m", 0.12, "Frames at or below this summed volume count as silence")
	f.Bool("full", false, "Write every frame's symbol on its own line")
	f.Bool("break-on-silence", false, "Start a new line after a pause")
	f.String("peak-order", "prominence", "Autocorrelation peak selection: prominence or position")
	f.String("overflow", defaultOverflow, "When analysis falls behind: block, drop or unbounded")
	f.Bool("no-save", false, "Do not store the run in the recording history")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// createService creates a new AutoTabber service from the command's flags
func createService(cmd *cobra.Command, extra ...autotabber.Option) (autotabber.Service, error) {
	f := cmd.Flags()
	key, _ := f.GetString("key")
	bufferSize, _ := f.GetInt("buffer-size")
	count, _ := f.GetInt("count")
	minVolume, _ := f.GetFloat64("min-volume")
	full, _ := f.GetBool("full")
	breakOnSilence, _ := f.GetBool("break-on-silence")
	noSave, _ := f.GetBool("no-save")

	orderName, _ := f.GetString("peak-order")
	order, err := autotabber.ParsePeakOrder(orderName)
	if err != nil {
		return nil, err
	}
	overflowName, _ := f.GetString("overflow")
	policy, err := autotabber.ParseOverflowPolicy(overflowName)
	if err != nil {
		return nil, err
	}

	opts := []autotabber.Option{
		autotabber.WithDBPath(dbPath),
		autotabber.WithTempDir(tempDir),
		autotabber.WithKey(key),
		autotabber.WithFrameSize(bufferSize),
		autotabber.WithMinCount(count),
		autotabber.WithMinVolume(minVolume),
		autotabber.WithFull(full),
		autotabber.WithBreakOnSilence(breakOnSilence),
		autotabber.WithPeakOrder(order),
		autotabber.WithOverflow(policy),
		autotabber.WithSaveRecordings(!noSave),
	}
	return autotabber.NewService(append(opts, extra...)...)
}

// createHistoryService opens the service for history commands only.
func createHistoryService() (autotabber.Service, error) {
	return autotabber.NewService(
		autotabber.WithDBPath(dbPath),
		autotabber.WithTempDir(tempDir),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, autotabber.ErrInvalidKey) {
			fmt.Fprintln(os.Stderr, "Run 'autotab keys' to see the supported keys.")
		}
		os.Exit(1)
	}
}
