// Command solar-grid detects the solar disk in full-disk images and writes
// copies annotated with the limb, the disk center and a heliographic grid.
//
//	solar-grid -step 15 -label timestamp -out annotated/ frames/*.png
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ironsheep/solar-grid-mcp/internal/detection"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
	"github.com/ironsheep/solar-grid-mcp/internal/pipeline"
)

// Config holds the command-line settings.
type Config struct {
	Output   string
	Profile  string
	Detector string
	Step     int
	B0       float64
	P        float64
	Label    string
	Workers  int
	Verbose  bool
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime)
	_ = godotenv.Load()

	var cfg Config
	flag.StringVar(&cfg.Output, "out", "", "output file (single input) or directory; default writes <name>_grid<ext> next to each input")
	flag.StringVar(&cfg.Profile, "profile", os.Getenv(pipeline.EnvProfile), "JSON5 tuning profile")
	flag.StringVar(&cfg.Detector, "detector", "", "detector strategy: "+strings.Join(detection.Strategies(), ", "))
	flag.IntVar(&cfg.Step, "step", 0, "grid spacing in degrees (default from profile, 10)")
	flag.Float64Var(&cfg.B0, "b0", 0, "heliographic latitude of the disk center in degrees")
	flag.Float64Var(&cfg.P, "p", 0, "position angle of the rotation axis in degrees")
	flag.StringVar(&cfg.Label, "label", "", `label drawn bottom-left; "timestamp" uses the file modification time`)
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "images processed in parallel")
	flag.BoolVar(&cfg.Verbose, "v", false, "log the detected disk for every image")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] IMAGE...\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	jobs, err := buildJobs(inputs, cfg.Output)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	failed := 0
	for _, r := range pipeline.RunFiles(ctx, imaging.NewImageCache(), jobs, opts, cfg.Workers) {
		if r.Err != nil {
			failed++
			log.Printf("%s: %v", r.Job.Input, r.Err)
			continue
		}
		if cfg.Verbose {
			log.Printf("%s: %s disk %s -> %s", r.Job.Input, r.Result.Detector, r.Result.Disk, r.Job.Output)
		}
	}
	if failed > 0 {
		log.Fatalf("%d of %d images failed", failed, len(jobs))
	}
}

// buildOptions starts from the profile (or the defaults), applies the
// environment, then any flag given on the command line.
func buildOptions(cfg Config) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if cfg.Profile != "" {
		var err error
		if opts, err = pipeline.LoadProfile(cfg.Profile); err != nil {
			return pipeline.Options{}, err
		}
	}
	opts, err := opts.WithEnv(os.Getenv)
	if err != nil {
		return pipeline.Options{}, err
	}

	if cfg.Detector != "" {
		opts.Detector = cfg.Detector
	}
	if cfg.Step != 0 {
		opts.Grid.StepDegrees = cfg.Step
	}
	if cfg.B0 != 0 {
		opts.Grid.Observer.B0 = cfg.B0
	}
	if cfg.P != 0 {
		opts.Grid.Observer.P = cfg.P
	}
	if cfg.Label != "" {
		opts.Style.Label = cfg.Label
	}
	return opts, opts.Validate()
}

// buildJobs pairs every input with its output path. out names a file only
// when there is a single input and out is not an existing directory.
func buildJobs(inputs []string, out string) ([]pipeline.Job, error) {
	dir := ""
	if out != "" {
		if info, err := os.Stat(out); (err == nil && info.IsDir()) || len(inputs) > 1 || strings.HasSuffix(out, string(os.PathSeparator)) {
			if err := os.MkdirAll(out, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", err)
			}
			dir = out
		} else {
			return []pipeline.Job{{Input: inputs[0], Output: out}}, nil
		}
	}

	jobs := make([]pipeline.Job, len(inputs))
	for i, in := range inputs {
		ext := filepath.Ext(in)
		name := strings.TrimSuffix(filepath.Base(in), ext) + "_grid" + ext
		target := filepath.Join(filepath.Dir(in), name)
		if dir != "" {
			target = filepath.Join(dir, name)
		}
		jobs[i] = pipeline.Job{Input: in, Output: target}
	}
	return jobs, nil
}
