// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"go.astrophena.name/mergecontent/cli"
	"go.astrophena.name/mergecontent/logger"
	"go.astrophena.name/mergecontent/merge"
)

func main() { cli.Main(new(app)) }

type app struct {
	cfg merge.Config
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.cfg.Quiet, "q", false, "Alias for -quiet.")
	fs.BoolVar(&a.cfg.Quiet, "quiet", false, "Don't print the startup summary.")
	fs.StringVar(&a.cfg.Dir, "dir", "", "Path to `directory` storing all files to merge (required).")
	fs.StringVar(&a.cfg.FilePattern, "file_pattern", merge.DefaultPattern, "`Pattern` of file names to merge.")
	fs.StringVar(&a.cfg.OutputDir, "output_dir", "", "Path to `directory` where the merged file will be created (required).")
	fs.StringVar(&a.cfg.OutputFilename, "output_filename", "", "`Name` of the merged file (required).")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	for _, f := range []struct{ name, val string }{
		{"dir", a.cfg.Dir},
		{"output_dir", a.cfg.OutputDir},
		{"output_filename", a.cfg.OutputFilename},
	} {
		if f.val == "" {
			return fmt.Errorf("%w: -%s is required", cli.ErrInvalidArgs, f.name)
		}
	}

	// No changed files, nothing to merge.
	if len(env.Args) == 0 {
		return nil
	}

	res, err := merge.New(a.cfg, env.Stdout).Run(ctx)
	if err != nil {
		return err
	}
	if res == merge.Unchanged {
		return nil
	}
	logger.Info(ctx, "merged file was updated", slog.String("path", a.cfg.OutputPath()))
	return cli.Exit(1)
}
