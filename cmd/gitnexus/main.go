// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the gitnexus CLI for building a code knowledge
// graph from a repository and reporting on it.
//
// Usage:
//
//	gitnexus index [options]    Walk a repository and build its graph
//	gitnexus status [--json]    Show the last indexed graph's statistics
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `gitnexus - code knowledge graph CLI

Usage:
  gitnexus <command> [options]

Commands:
  index     Walk a repository and build its code knowledge graph
  status    Show the last indexed graph's statistics

Global Options:
  --version     Show version and exit

Examples:
  gitnexus index                     Index the current directory
  gitnexus index --project-id myapp  Index under an explicit project id
  gitnexus index --json              Emit the result summary as JSON
  gitnexus status                    Show stats for the current directory's project
  gitnexus status --json             Output as JSON

Data Storage:
  Graph snapshots are stored locally in ~/.gitnexus/data/<project_id>/

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("gitnexus version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "index":
		runIndex(cmdArgs)
	case "status":
		runStatus(cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}
