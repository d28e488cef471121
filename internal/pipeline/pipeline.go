package pipeline

import (
	"context"
	"fmt"
	"image"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/solar-grid-mcp/internal/detection"
	"github.com/ironsheep/solar-grid-mcp/internal/geometry"
	"github.com/ironsheep/solar-grid-mcp/internal/helio"
	"github.com/ironsheep/solar-grid-mcp/internal/imaging"
	"github.com/ironsheep/solar-grid-mcp/internal/render"
)

// TimestampKeyword as a label is replaced by the image file's modification
// time formatted with render.TimestampLabel.
const TimestampKeyword = "timestamp"

// Result is the outcome of analyzing one image. Coordinates are relative to
// the image's top-left corner.
type Result struct {
	Disk     geometry.Disk    `json:"disk"`
	Detector string           `json:"detector"`
	Width    int              `json:"width"`
	Height   int              `json:"height"`
	Lines    []helio.GridLine `json:"lines"`
}

// Analyze detects the disk in img and builds its grid. A detection failure
// aborts the run: no grid is built around a placeholder disk.
func Analyze(img image.Image, opts Options) (*Result, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", geometry.ErrInvalidInput)
	}
	return AnalyzeGray(imaging.ToGray(img), opts)
}

// AnalyzeGray is Analyze for an already converted grayscale plane, such as
// one from ImageCache.LoadGray. Coordinates in the result are relative to
// the top-left corner of gray.
func AnalyzeGray(gray *image.Gray, opts Options) (*Result, error) {
	if gray == nil {
		return nil, fmt.Errorf("%w: nil image", geometry.ErrInvalidInput)
	}
	gray = imaging.ToGray(gray)

	det, err := opts.NewDetector()
	if err != nil {
		return nil, err
	}
	disk, used, err := detection.Run(det, gray)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", det.Name(), err)
	}

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	lines, err := opts.Grid.Build(disk, w, h)
	if err != nil {
		return nil, err
	}
	return &Result{
		Disk:     disk,
		Detector: used,
		Width:    w,
		Height:   h,
		Lines:    lines,
	}, nil
}

// Render draws res onto img with style.
func Render(img image.Image, res *Result, style render.Style) (*image.NRGBA, error) {
	return render.Overlay(img, res.Disk, res.Lines, style)
}

// Run analyzes img and renders the overlay with opts.Style.
func Run(img image.Image, opts Options) (*image.NRGBA, *Result, error) {
	res, err := Analyze(img, opts)
	if err != nil {
		return nil, nil, err
	}
	out, err := Render(img, res, opts.Style)
	if err != nil {
		return nil, nil, err
	}
	return out, res, nil
}

// ResolveLabel expands TimestampKeyword using the modification time of the
// file at path. Any other label is returned unchanged.
func ResolveLabel(label, path string) (string, error) {
	if label != TimestampKeyword {
		return label, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s for its timestamp: %w", path, err)
	}
	return render.TimestampLabel(info.ModTime()), nil
}

// Job is one input/output pair for RunFiles.
type Job struct {
	Input  string
	Output string
}

// FileResult reports the outcome of one Job.
type FileResult struct {
	Job    Job
	Result *Result
	Err    error
}

// RunFiles processes jobs with at most workers images in flight. Every job
// runs even when others fail; each outcome is reported in job order.
// Cancelling ctx stops jobs that have not started yet.
func RunFiles(ctx context.Context, cache *imaging.ImageCache, jobs []Job, opts Options, workers int) []FileResult {
	if workers < 1 {
		workers = 1
	}
	results := make([]FileResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, job := range jobs {
		results[i].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result, results[i].Err = runFile(cache, job, opts)
			// Evicting keeps memory flat across a long batch of 4k frames.
			cache.Evict(job.Input)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func runFile(cache *imaging.ImageCache, job Job, opts Options) (*Result, error) {
	img, err := cache.Load(job.Input)
	if err != nil {
		return nil, err
	}
	label, err := ResolveLabel(opts.Style.Label, job.Input)
	if err != nil {
		return nil, err
	}
	opts.Style.Label = label

	out, res, err := Run(img, opts)
	if err != nil {
		return nil, err
	}
	if err := imaging.Save(out, job.Output); err != nil {
		return nil, err
	}
	return res, nil
}
