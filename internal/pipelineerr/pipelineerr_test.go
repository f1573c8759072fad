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

package pipelineerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Recoverable(t *testing.T) {
	assert.True(t, KindIOTransient.Recoverable())
	assert.True(t, KindParseFailure.Recoverable())
	assert.True(t, KindResolutionMiss.Recoverable())
	assert.False(t, KindWorkerTimeout.Recoverable())
	assert.False(t, KindWorkerCrash.Recoverable())
	assert.False(t, KindFatal.Recoverable())
}

func TestPipelineError_ErrorMessage(t *testing.T) {
	cause := errors.New("permission denied")
	err := IOTransient("scan", "a.go", cause)
	assert.Contains(t, err.Error(), "io-transient")
	assert.Contains(t, err.Error(), "a.go")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := ParseFailure("parse", "b.ts", cause)
	assert.ErrorIs(t, err, cause)
}

func TestCounter_RecordsByKind(t *testing.T) {
	c := NewCounter()
	c.Record(IOTransient("scan", "a.go", nil))
	c.Record(IOTransient("scan", "b.go", nil))
	c.Record(ParseFailure("parse", "c.ts", nil))
	c.Record(errors.New("opaque error"))

	assert.Equal(t, 2, c.Count(KindIOTransient))
	assert.Equal(t, 1, c.Count(KindParseFailure))
	assert.Equal(t, 1, c.Count(KindFatal))
	assert.Equal(t, 4, c.Total())
}
