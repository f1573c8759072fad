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

package main

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/securityphoenix/gitnexus/internal/pipeline"
)

// ProgressConfig determines if and how progress should be displayed.
type ProgressConfig struct {
	Enabled bool
	Writer  io.Writer
	NoColor bool
}

// NewProgressConfig derives display settings from the --json/--quiet flags
// and stderr TTY detection.
func NewProgressConfig(jsonOutput, quiet, noColor bool) ProgressConfig {
	enabled := !jsonOutput && !quiet && isatty.IsTerminal(os.Stderr.Fd())
	return ProgressConfig{Enabled: enabled, Writer: os.Stderr, NoColor: noColor}
}

// newPhaseBar creates a 0-100 progress bar for one pipeline phase.
// Returns nil if progress is disabled.
func newPhaseBar(cfg ProgressConfig, description string) *progressbar.ProgressBar {
	if !cfg.Enabled {
		return nil
	}
	return progressbar.NewOptions64(100,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(cfg.Writer),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(!cfg.NoColor),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer: "=", SaucerHead: ">", SaucerPadding: " ", BarStart: "[", BarEnd: "]",
		}),
	)
}

// drainProgress consumes pipeline.Event values from ch until it is closed,
// rendering one progress bar per phase in sequence: a new phase's bar
// replaces the previous one since events.Percent resets to 0 at each phase
// boundary.
func drainProgress(cfg ProgressConfig, ch <-chan pipeline.Event) {
	var bar *progressbar.ProgressBar
	var current pipeline.Phase
	for e := range ch {
		if bar == nil || e.Phase != current {
			if bar != nil {
				_ = bar.Finish()
			}
			bar = newPhaseBar(cfg, string(e.Phase))
			current = e.Phase
		}
		if bar != nil {
			_ = bar.Set(e.Percent)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}
}
