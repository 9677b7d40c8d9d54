// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Merge-files-content merges the contents of files into a single file. It is
meant to be run as a pre-commit hook.

It recursively finds every file under -dir that matches -file_pattern, sorts
them by path and joins their contents with two blank lines, ending the result
with a newline. The result is written to -output_filename in -output_dir, but
only if it differs from what the file already contains.

The hook framework passes the names of changed files as arguments. If there
are none, the tool does nothing. Otherwise the names are ignored and the whole
directory is scanned again.

Exit status is 0 when there is nothing to do or the merged file is up to date,
and 1 when the merged file was written or an error occurred, so the commit is
stopped until the merged file is staged.

The -q and -quiet flags are booleans and take no separate value. Hook
configurations written as "--quiet", "1" stop flag parsing at "1": every flag
after it is treated as a file name, so the run fails with a missing -dir. Use
-quiet or -quiet=true instead.

Example .pre-commit-config.yaml entry:

	- repo: local
	  hooks:
	    - id: merge-files-content
	      name: Merge migrations
	      entry: go tool merge-files-content
	      language: system
	      files: \.sql$
	      args: [-dir=db/migrations, -output_dir=db, -output_filename=schema.sql]
*/
package main

import (
	_ "embed"

	"go.astrophena.name/mergecontent/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
