package main

import (
	"flag"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/pressly/shotfit"
	"github.com/pressly/shotfit/batch"
	"github.com/pressly/shotfit/native"
)

var (
	flags    = flag.NewFlagSet("shotfit", flag.ExitOnError)
	confFile = flags.String("config", "", "path to config file")
	dir      = flags.String("dir", "", "directory holding the screenshots")
	pattern  = flags.String("pattern", "", "glob of the screenshots to resize (default IMG_*.PNG)")
	size     = flags.String("size", "", "target size: 6.7, 6.5 or WxH (default 6.7, 1284x2778)")
	suffix   = flags.String("suffix", "", "appended to the output file name (default _resized)")
	engine   = flags.String("engine", "", "image engine: native or imagick (default native)")
	logLevel = flags.String("log-level", "", "log level (default info)")
	dryRun   = flags.Bool("dry-run", false, "print the plan for each file without writing")
	stats    = flags.Bool("stats", false, "print timing stats after the run")
	noColor  = flags.Bool("no-color", false, "disable colored output")
)

var engines = map[string]func() shotfit.Engine{
	"native": func() shotfit.Engine { return native.Engine{} },
}

func main() {
	flags.Parse(os.Args[1:])

	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	conf, err := batch.NewConfigFromFile(*confFile, os.Getenv("CONFIG"))
	if err != nil {
		return err
	}

	// flags win over the config file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dir":
			conf.Dir = *dir
		case "pattern":
			conf.Pattern = *pattern
		case "size":
			conf.Size = *size
		case "suffix":
			conf.Suffix = *suffix
		case "engine":
			conf.Engine = *engine
		case "log-level":
			conf.LogLevel = *logLevel
		case "dry-run":
			conf.DryRun = *dryRun
		case "stats":
			conf.Stats = *stats
		case "no-color":
			conf.NoColor = *noColor
		}
	})

	newEngine, ok := engines[conf.Engine]
	if !ok {
		return errors.Errorf("unknown engine %q", conf.Engine)
	}
	ng := newEngine()
	if err := ng.Initialize(conf.TmpDir); err != nil {
		return err
	}
	defer ng.Terminate()

	runner, err := batch.New(conf, ng, color.Output)
	if err != nil {
		return err
	}
	runner.Log.Debugf("** shotfit v%s, engine: %s **", shotfit.VERSION, ng.Version())

	rp, err := runner.Run()
	if err == shotfit.ErrNoInputFound {
		return nil
	}
	if err != nil {
		return err
	}

	for _, res := range rp.Failed() {
		runner.Log.WithError(res.Err).Warnf("%s was skipped", res.Path)
	}
	return nil
}
