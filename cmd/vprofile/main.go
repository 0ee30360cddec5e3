package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dpup/vprofile/internal/config"
	"github.com/dpup/vprofile/internal/lib/profile"
	"github.com/dpup/vprofile/internal/logging"
	"github.com/dpup/vprofile/internal/services"
	"github.com/dpup/vprofile/internal/vector"
)

// coordinateList collects east,north pairs from one or more -east_north flags
type coordinateList []float64

func (c *coordinateList) String() string {
	parts := make([]string, len(*c))
	for i, v := range *c {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ",")
}

func (c *coordinateList) Set(s string) error {
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("invalid coordinate %q", part)
		}
		*c = append(*c, v)
	}
	return nil
}

type cliFlags struct {
	opts       services.Options
	configPath string
	verbose    bool
}

func parseFlags(args []string, stderr io.Writer) (cliFlags, error) {
	var (
		cli    cliFlags
		coords coordinateList
	)
	fs := flag.NewFlagSet("vprofile", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&cli.opts.Input, "input", "", "Name of the input dataset")
	types := fs.String("type", "point,line", "Feature types to sample (point, line)")
	fs.Var(&coords, "east_north", "Profile line coordinates as east,north pairs")
	fs.StringVar(&cli.opts.Polyline, "profile_polyline", "", "Profile line as a Google encoded polyline")
	fs.StringVar(&cli.opts.ProfileMap, "profile_map", "", "Dataset holding the profile line")
	fs.StringVar(&cli.opts.ProfileWhere, "profile_where", "", "WHERE conditions selecting the profile line")
	fs.IntVar(&cli.opts.ProfileLayer, "profile_layer", 1, "Layer of the profile dataset")
	fs.Float64Var(&cli.opts.Buffer, "buffer", 10, "Tolerance around the profile line, in map units")
	fs.StringVar(&cli.opts.Output, "output", "-", "Output file, '-' for stdout")
	separator := fs.String("separator", "pipe", "Field separator (pipe, comma, space, tab, newline or a literal)")
	fs.IntVar(&cli.opts.Precision, "dp", 2, "Number of decimal places in output (0-32)")
	fs.StringVar(&cli.opts.Where, "where", "", "WHERE conditions narrowing the input features")
	fs.IntVar(&cli.opts.Layer, "layer", 1, "Layer of the input dataset")
	fs.StringVar(&cli.opts.MapOutput, "map_output", "", "Name of a new dataset receiving the profile line and corridor")
	fs.BoolVar(&cli.opts.NoHeader, "c", false, "Do not print the column names")
	fs.BoolVar(&cli.opts.NoZ, "z", false, "Do not print elevation for 3-D inputs")
	fs.StringVar(&cli.configPath, "config", "", "Path to a YAML configuration file")
	fs.BoolVar(&cli.verbose, "v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	mask, err := vector.ParseTypes(*types)
	if err != nil {
		return cliFlags{}, err
	}
	cli.opts.Types = mask
	cli.opts.Coordinates = coords
	cli.opts.Separator = profile.ParseSeparator(*separator)
	return cli, nil
}

func main() {
	cli, err := parseFlags(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	} else if err != nil {
		log.Fatalf("Invalid arguments: %v", err)
	}

	cfg, err := config.Load(cli.configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cli.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := logging.With(context.Background(), logger)
	if err := services.NewProfiler(cfg).Run(ctx, cli.opts, os.Stdout); err != nil {
		logging.Errorw(ctx, "Profile failed", "input", cli.opts.Input, "error", err)
		logger.Sync()
		os.Exit(1)
	}
}
