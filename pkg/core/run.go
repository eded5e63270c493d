package core

import (
	"errors"

	"go.uber.org/zap"

	"qstore/pkg/config"
	"qstore/pkg/progress"
)

type job struct {
	path   string
	action Action
}

// Run handles every input of cfg. Inputs that restore content run before
// inputs that produce new files, so that an output of this run is never
// taken as input. Invalid inputs are reported and skipped; they make Run
// fail only after everything else succeeded. Any other error stops the run.
func Run(cfg config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := NewOptions(cfg, log)
	if err != nil {
		return err
	}
	return run(cfg, opts)
}

func run(cfg config.Config, opts Options) error {
	opts = opts.withDefaults()
	rep := progress.NewReporter(opts.Log)

	var (
		unpack, produce []job
		invalid         []error
	)
	for _, in := range cfg.Inputs {
		a, err := Classify(in, opts.Suffixes)
		if err != nil {
			opts.Log.Error("skipping input", zap.String("path", in), zap.Error(err))
			invalid = append(invalid, err)
			continue
		}
		rep.Decision(in, a.String())

		if a.Unpacks() {
			unpack = append(unpack, job{path: in, action: a})
		} else {
			produce = append(produce, job{path: in, action: a})
		}
	}

	for _, j := range unpack {
		var err error
		switch {
		case j.action == ActionDecompressFile:
			_, err = DecompressFile(j.path, opts)
		case cfg.List:
			err = List(j.path, opts.Out)
		default:
			err = Extract(j.path, opts)
		}
		if err != nil {
			return err
		}
	}

	var bundle []string
	for _, j := range produce {
		var err error
		switch {
		case j.action == ActionCompressFile:
			_, err = CompressFile(j.path, opts)
		case cfg.Bundle:
			bundle = append(bundle, j.path)
		default:
			var output string
			output, err = Pack([]string{j.path}, opts)
			if err == nil {
				opts.Log.Info("container written", zap.String("path", output))
			}
		}
		if err != nil {
			return err
		}
	}

	if len(bundle) > 0 {
		output, err := Pack(bundle, opts)
		if err != nil {
			return err
		}
		opts.Log.Info("container written", zap.String("path", output), zap.Int("roots", len(bundle)))
	}

	return errors.Join(invalid...)
}
