package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output modes.
const (
	// OutputModeBatch writes a single map for the whole batch, named after the last track.
	OutputModeBatch = "batch"
	// OutputModePerFile writes one map per track, next to its source file.
	OutputModePerFile = "per-file"
)

const envPrefix = "TRACKMAP"

// Config holds the configuration settings for a track map run.
//
// Fields:
// - Env: The current environment (local, development, production), selects the log handler.
// - Directory: The directory scanned for track files.
// - Workers: The number of concurrent workers reading track files.
// - OutputMode: Whether one map is written per batch or per file.
// - Zoom: The initial zoom level of the rendered map.
// - IncludeGPX: Whether .gpx files are picked up next to .kml and .kmz.
// - ExtractKMZ: Whether the KML entry of each archive is written next to it.
// - MetricsFile: Optional path for a Prometheus textfile with run metrics.
type Config struct {
	Env         string // Env is the current environment: local, development, production.
	Directory   string // Directory holds the track files.
	Workers     int    // Workers is the size of the reader pool.
	OutputMode  string // OutputMode is batch or per-file.
	Zoom        int    // Zoom is the initial map zoom.
	IncludeGPX  bool   // IncludeGPX enables GPX discovery.
	ExtractKMZ  bool   // ExtractKMZ writes archive entries to disk.
	MetricsFile string // MetricsFile is the Prometheus textfile path.
}

// MustLoad loads the configuration from the command line, the environment and an
// optional .env file, and panics when it cannot. --help prints usage and exits.
func MustLoad() *Config {
	cfg, err := Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		panic(err.Error())
	}

	return cfg
}

// Load builds the configuration from args and TRACKMAP_* environment variables.
// Flags win over environment variables, which win over defaults. A positional
// argument, when given, is the directory to scan.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("trackmap", pflag.ContinueOnError)
	flags.StringP("dir", "d", "", "directory with .kml/.kmz files")
	flags.String("env", "local", "environment: local, development, production")
	flags.Int("workers", 1, "number of files read concurrently")
	flags.String("output-mode", OutputModeBatch, "batch (one map for all tracks) or per-file")
	flags.Int("zoom", 14, "initial map zoom level")
	flags.Bool("gpx", false, "also read .gpx files")
	flags.Bool("extract-kmz", true, "write the KML entry of each .kmz next to the archive")
	flags.String("metrics-file", "", "write run metrics to this Prometheus textfile")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	workers, err := strconv.Atoi(v.GetString("workers"))
	if err != nil {
		return nil, errors.New("failed to parse workers from configuration, must be an integer")
	}
	zoom, err := strconv.Atoi(v.GetString("zoom"))
	if err != nil {
		return nil, errors.New("failed to parse zoom from configuration, must be an integer")
	}
	includeGPX, err := strconv.ParseBool(v.GetString("gpx"))
	if err != nil {
		return nil, errors.New("failed to parse gpx from configuration, must be a boolean")
	}
	extractKMZ, err := strconv.ParseBool(v.GetString("extract-kmz"))
	if err != nil {
		return nil, errors.New("failed to parse extract-kmz from configuration, must be a boolean")
	}

	cfg := &Config{
		Env:         v.GetString("env"),
		Directory:   v.GetString("dir"),
		Workers:     workers,
		OutputMode:  v.GetString("output-mode"),
		Zoom:        zoom,
		IncludeGPX:  includeGPX,
		ExtractKMZ:  extractKMZ,
		MetricsFile: v.GetString("metrics-file"),
	}
	if flags.NArg() > 0 {
		cfg.Directory = flags.Arg(0)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Directory == "" {
		errs = append(errs, "dir is required (flag --dir, positional argument or TRACKMAP_DIR)")
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Sprintf("workers must be at least 1, got %d", c.Workers))
	}
	if c.OutputMode != OutputModeBatch && c.OutputMode != OutputModePerFile {
		errs = append(errs, fmt.Sprintf("output-mode must be %q or %q, got %q", OutputModeBatch, OutputModePerFile, c.OutputMode))
	}
	if c.Zoom < 0 || c.Zoom > 20 {
		errs = append(errs, fmt.Sprintf("zoom must be 0-20, got %d", c.Zoom))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
