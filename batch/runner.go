// Package batch runs the screenshot normalizer over every file matching a
// pattern. Files are handled one at a time and a failing file never stops
// the run.
package batch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/pressly/shotfit"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

type Runner struct {
	Config  *Config
	Engine  shotfit.Engine
	Sizing  *shotfit.Sizing
	Log     *logrus.Logger
	Metrics metrics.Registry

	console *console
}

type Result struct {
	Path   string
	Output string
	Plan   *shotfit.Plan
	Err    error
}

type Report struct {
	Total   int
	Results []Result
}

func (rp *Report) Succeeded() int {
	n := 0
	for _, res := range rp.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

func (rp *Report) Failed() []Result {
	var failed []Result
	for _, res := range rp.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

func (rp *Report) String() string {
	return fmt.Sprintf("%d/%d", rp.Succeeded(), rp.Total)
}

// New applies conf and prepares a runner. The engine must already be
// initialized.
func New(conf *Config, ng shotfit.Engine, out io.Writer) (*Runner, error) {
	if err := conf.Apply(); err != nil {
		return nil, err
	}

	sz, err := shotfit.NewSizing(conf.Target)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		Config:  conf,
		Engine:  ng,
		Sizing:  sz,
		Log:     conf.NewLogger(),
		Metrics: metrics.NewRegistry(),
		console: newConsole(out, conf.NoColor),
	}
	return r, nil
}

// Inputs returns the sorted files matching the configured pattern, leaving
// out anything that already carries the output suffix.
func (r *Runner) Inputs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(r.Config.Dir, r.Config.Pattern))
	if err != nil {
		return nil, errors.Wrapf(err, "pattern %q", r.Config.Pattern)
	}

	files := []string{}
	for _, fn := range matches {
		base := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
		if strings.HasSuffix(base, r.Config.Suffix) {
			continue
		}
		if fi, err := os.Stat(fn); err != nil || fi.IsDir() {
			continue
		}
		files = append(files, fn)
	}
	sort.Strings(files)
	return files, nil
}

func (r *Runner) Run() (*Report, error) {
	r.Log.Debugf("engine: %s, target: %s", r.Engine.Version(), r.Sizing.Size)

	files, err := r.Inputs()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		r.console.NoInput(r.Config.Pattern)
		return &Report{}, shotfit.ErrNoInputFound
	}

	r.console.Header(len(files))

	rp := &Report{Total: len(files)}
	for _, fn := range files {
		res := Result{Path: fn}
		if r.Config.DryRun {
			res.Plan, res.Err = r.PlanFile(fn)
		} else {
			res.Output, res.Err = r.ProcessFile(fn)
		}
		rp.Results = append(rp.Results, res)
	}

	example := OutputPath("IMG_XXXX.PNG", r.Config.Suffix, r.Sizing.Format)
	r.console.Summary(rp, r.Sizing.Size.Width, r.Sizing.Size.Height, example)

	if r.Config.Stats {
		metrics.WriteOnce(r.Metrics, r.console.out)
	}
	return rp, nil
}

// ProcessFile normalizes one screenshot and writes it next to the source.
// Any failure, including a panic in the engine, is returned as an error.
func (r *Runner) ProcessFile(fn string) (output string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var ok bool
			err, ok = rec.(error)
			if !ok {
				err = fmt.Errorf("shotfit: %v", rec)
			}
			output = ""
		}
		r.finish(fn, err)
	}()

	r.console.File(filepath.Base(fn))

	im, err := r.load(fn)
	if err != nil {
		return "", err
	}
	defer im.Release()

	r.console.Detail("original size: %d × %dpx", im.Width(), im.Height())
	if im.Width() > im.Height() {
		r.console.Detail("rotated")
	}

	if err := r.sizeIt(im); err != nil {
		return "", errors.Wrapf(err, "size %s", fn)
	}

	output = OutputPath(fn, r.Config.Suffix, r.Sizing.Format)
	if err := r.write(im, output); err != nil {
		return "", errors.Wrapf(err, "write %s", output)
	}

	r.console.Detail("final size: %d × %dpx", im.Width(), im.Height())
	r.console.Detail("saved: %s", filepath.Base(output))
	return output, nil
}

// PlanFile reports what ProcessFile would do without decoding pixels.
func (r *Runner) PlanFile(fn string) (plan *shotfit.Plan, err error) {
	defer func() { r.finish(fn, err) }()

	r.console.File(filepath.Base(fn))

	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, shotfit.NewDecodeError(fn, err)
	}
	imfo, err := r.Engine.GetImageInfo(b)
	if err != nil {
		return nil, shotfit.NewDecodeError(fn, err)
	}

	plan = r.Sizing.CalcPlan(shotfit.NewRect(imfo.Width, imfo.Height))
	r.console.Detail("original size: %d × %dpx", imfo.Width, imfo.Height)
	r.console.Detail("plan: %s", plan)
	r.console.Detail("would save: %s", filepath.Base(OutputPath(fn, r.Config.Suffix, r.Sizing.Format)))
	return plan, nil
}

func (r *Runner) load(fn string) (shotfit.Image, error) {
	m := metrics.GetOrRegisterTimer("fn.shot.load", r.Metrics)
	defer m.UpdateSince(time.Now())

	im, err := r.Engine.LoadFile(fn)
	if err != nil {
		return nil, shotfit.NewDecodeError(fn, err)
	}
	return im, nil
}

func (r *Runner) sizeIt(im shotfit.Image) error {
	m := metrics.GetOrRegisterTimer("fn.shot.sizeit", r.Metrics)
	defer m.UpdateSince(time.Now())

	return im.SizeIt(r.Sizing)
}

func (r *Runner) write(im shotfit.Image, output string) error {
	m := metrics.GetOrRegisterTimer("fn.shot.write", r.Metrics)
	defer m.UpdateSince(time.Now())

	return im.WriteToFile(output)
}

func (r *Runner) finish(fn string, err error) {
	if err != nil {
		metrics.GetOrRegisterCounter("fn.shot.failed", r.Metrics).Inc(1)
		r.console.Error(err)
		r.Log.WithError(err).WithField("file", fn).Debug("skipped")
		return
	}
	metrics.GetOrRegisterCounter("fn.shot.processed", r.Metrics).Inc(1)
}

// OutputPath swaps the extension of fn for suffix plus the output format,
// ie. IMG_0001.PNG becomes IMG_0001_resized.png.
func OutputPath(fn, suffix, format string) string {
	if format == "" {
		format = shotfit.DefaultFormat
	}
	return strings.TrimSuffix(fn, filepath.Ext(fn)) + suffix + "." + format
}
