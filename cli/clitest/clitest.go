// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest runs [cli.App] implementations in-process for tests.
package clitest

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.astrophena.name/mergecontent/cli"
)

// Case describes a single invocation of an application and what it is
// expected to produce.
type Case[A cli.App] struct {
	// Args are the command-line arguments, without the program name.
	Args []string

	// WantErr, if set, must match the returned error with errors.Is.
	WantErr error
	// WantExitCode is the exit status cli.Main would use. When it and
	// WantErr are zero, the app must succeed.
	WantExitCode int

	// WantInStdout and WantInStderr must be contained in the output.
	WantInStdout string
	WantInStderr string
	// WantNothingPrinted requires both stdout and stderr to be empty.
	WantNothingPrinted bool

	// CheckFunc, if set, is called after the application returns.
	CheckFunc func(*testing.T, A)
}

// Run runs each case as a subtest. setup creates a fresh application for
// every case.
func Run[A cli.App](t *testing.T, setup func(*testing.T) A, cases map[string]Case[A]) {
	t.Helper()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := setup(t)

			var stdout, stderr bytes.Buffer
			env := &cli.Env{
				Args:   tc.Args,
				Getenv: func(string) string { return "" },
				Stdin:  strings.NewReader(""),
				Stdout: &stdout,
				Stderr: &stderr,
			}

			err := cli.Run(cli.WithEnv(context.Background(), env), app)
			checkErr(t, tc, err)

			if tc.WantNothingPrinted && (stdout.Len() > 0 || stderr.Len() > 0) {
				t.Errorf("want nothing printed, got stdout %q, stderr %q", stdout.String(), stderr.String())
			}
			if tc.WantInStdout != "" && !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout must contain %q, got %q", tc.WantInStdout, stdout.String())
			}
			if tc.WantInStderr != "" && !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr must contain %q, got %q", tc.WantInStderr, stderr.String())
			}

			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}

func checkErr[A cli.App](t *testing.T, tc Case[A], err error) {
	t.Helper()
	if tc.WantErr == nil && tc.WantExitCode == 0 {
		if err != nil {
			t.Fatalf("want no error, got %v", err)
		}
		return
	}
	if tc.WantErr != nil && !errors.Is(err, tc.WantErr) {
		t.Fatalf("want error %v, got %v", tc.WantErr, err)
	}
	if tc.WantExitCode != 0 {
		if got := cli.ExitCode(err); got != tc.WantExitCode {
			t.Fatalf("want exit code %d, got %d (err: %v)", tc.WantExitCode, got, err)
		}
	}
}
