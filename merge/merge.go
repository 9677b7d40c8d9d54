// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package merge concatenates the contents of files matching a pattern into a
// single output file, rewriting the output only when the merged content
// changes.
//
// Files are merged in the order of their paths. Contents are separated by two
// blank lines and the result ends with a single newline:
//
//	a.sql: SELECT 1;
//	b.sql: SELECT 2;
//
//	merged: "SELECT 1;\n\n\nSELECT 2;\n"
package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"go.astrophena.name/mergecontent/logger"
)

// DefaultPattern is the file pattern used when [Config.FilePattern] is empty.
const DefaultPattern = "*.sql"

// Separator is placed between contents of merged files.
const Separator = "\n\n\n"

// Errors returned by this package. They are wrapped with details, so check
// them with [errors.Is].
var (
	// ErrDiscovery means the file pattern is unusable or nothing matches it.
	ErrDiscovery = errors.New("can't get list of files to process")
	// ErrMissingFile means a discovered file disappeared before it was read.
	ErrMissingFile = errors.New("file was not found")
	// ErrEmptyFile means a discovered file has no content.
	ErrEmptyFile = errors.New("file is empty")
	// ErrIO means reading an input or the existing output, or writing the
	// output, failed.
	ErrIO = errors.New("i/o failure")
)

// Config configures an [Engine].
type Config struct {
	Dir            string // root directory to scan
	OutputDir      string // directory of the merged file
	OutputFilename string // name of the merged file
	FilePattern    string // glob matched against paths under Dir; DefaultPattern if empty
	Quiet          bool   // don't print the startup summary
}

// OutputPath returns the path of the merged file.
func (c Config) OutputPath() string {
	return filepath.Join(c.OutputDir, c.OutputFilename)
}

func (c Config) pattern() string {
	if c.FilePattern == "" {
		return DefaultPattern
	}
	return c.FilePattern
}

// Result is the outcome of a successful [Engine.Run].
type Result int

const (
	// Unchanged means the output already had the merged content.
	Unchanged Result = iota
	// Written means the output was created or overwritten.
	Written
)

func (r Result) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Written:
		return "written"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Engine merges files according to its [Config].
type Engine struct {
	cfg    Config
	stdout io.Writer
}

// New returns an Engine. Unless cfg.Quiet is set, Run prints a summary of the
// configuration to stdout.
func New(cfg Config, stdout io.Writer) *Engine {
	if stdout == nil {
		stdout = io.Discard
	}
	return &Engine{cfg: cfg, stdout: stdout}
}

// Run discovers and merges the files and writes the merged content to the
// output path if it differs from what is already there.
//
// On error nothing is written and the returned Result must be ignored.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	out := e.cfg.OutputPath()
	if !e.cfg.Quiet {
		fmt.Fprintf(e.stdout, "Run with args: \n"+
			"`directory`: %s,\n"+
			"`output_dir`: %s,\n"+
			"`file_pattern`: %s,\n"+
			"`output_filename`: %s\n",
			e.cfg.Dir, e.cfg.OutputDir, e.cfg.pattern(), out)
	}

	files, err := Discover(e.cfg.Dir, e.cfg.pattern())
	if err != nil {
		return Unchanged, err
	}
	logger.Debug(ctx, "discovered files", slog.String("dir", e.cfg.Dir), slog.Int("count", len(files)))

	merged, err := ReadAndMerge(files)
	if err != nil {
		return Unchanged, err
	}

	existing, err := LoadExisting(out)
	if err != nil {
		return Unchanged, err
	}
	if existing == merged {
		logger.Debug(ctx, "output is up to date", slog.String("path", out))
		return Unchanged, nil
	}

	if err := write(out, merged); err != nil {
		return Unchanged, err
	}
	logger.Debug(ctx, "wrote output", slog.String("path", out), slog.Int("bytes", len(merged)))
	return Written, nil
}

// ReadAndMerge reads files in the given order and joins their contents with
// [Separator], appending a newline after the last one.
func ReadAndMerge(files []string) (string, error) {
	var sb strings.Builder
	for i, path := range files {
		content, err := readInput(path)
		if err != nil {
			return "", err
		}
		if i > 0 {
			sb.WriteString(Separator)
		}
		sb.Write(content)
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

func readInput(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !fi.Mode().IsRegular()) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	return normalizeNewlines(content), nil
}

// normalizeNewlines converts "\r\n" and lone "\r" line endings to "\n".
func normalizeNewlines(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}

// LoadExisting returns the content of the file at path with line endings
// converted to "\n", or an empty string if it doesn't exist.
func LoadExisting(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: reading existing output: %w", ErrIO, err)
	}
	return string(normalizeNewlines(b)), nil
}

// write replaces the file at path with content in one rename. If path is a
// symlink, its target is replaced and the link is kept.
//
// An existing file keeps its permissions. A missing one is first created
// empty with mode 0666 so that it gets the permissions allowed by the umask,
// and removed again if the write fails.
func write(path, content string) error {
	target := resolveLink(path)

	perm, created, err := outputPerm(target)
	if err != nil {
		return fmt.Errorf("%w: writing output: %w", ErrIO, err)
	}
	if err := atomic.WriteFile(target, strings.NewReader(content)); err != nil {
		if created {
			os.Remove(target)
		}
		return fmt.Errorf("%w: writing output: %w", ErrIO, err)
	}
	if err := os.Chmod(target, perm); err != nil {
		return fmt.Errorf("%w: writing output: %w", ErrIO, err)
	}
	return nil
}

func resolveLink(path string) string {
	fi, err := os.Lstat(path)
	if err != nil || fi.Mode()&fs.ModeSymlink == 0 {
		return path
	}
	if target, err := filepath.EvalSymlinks(path); err == nil {
		return target
	}
	// Dangling link: write the file it points to.
	link, err := os.Readlink(path)
	if err != nil {
		return path
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(path), link)
	}
	return link
}

func outputPerm(path string) (perm fs.FileMode, created bool, err error) {
	fi, err := os.Stat(path)
	if err == nil {
		return fi.Mode().Perm(), false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return 0, false, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o666)
	if err != nil {
		return 0, false, err
	}
	fi, err = f.Stat()
	f.Close()
	if err != nil {
		os.Remove(path)
		return 0, false, err
	}
	return fi.Mode().Perm(), true, nil
}
