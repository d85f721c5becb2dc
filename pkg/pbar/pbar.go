// Copyright (c) 2025 Stefano Scafiti
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
package pbar

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const MinRefreshRate = time.Millisecond * 500

// ProgressBarState holds all the data needed to render the progress bar.
// Progress is measured in MFT records scanned rather than bytes read: a
// volume's record count is known up front from $MFT's $DATA size,
// while raw byte throughput says little about how far through the table a
// scan has gotten once sparse and non-resident runs are in the mix.
type ProgressBarState struct {
	TotalRecords         uint64
	ProcessedRecords     uint64
	EntriesFound         int
	StartTime            time.Time
	LastUpdateTime       time.Time
	LastProcessedRecords uint64
}

// NewProgressBarState initializes a new ProgressBarState for a volume with
// the given total record count.
func NewProgressBarState(totalRecords uint64) *ProgressBarState {
	return &ProgressBarState{
		TotalRecords:   totalRecords,
		StartTime:      time.Now(),
		LastUpdateTime: time.Unix(0, 0),
	}
}

// Render updates and prints the progress bar line
func (pbs *ProgressBarState) Render(force bool) {
	if !force && (pbs.LastUpdateTime.IsZero() || time.Since(pbs.LastUpdateTime) < MinRefreshRate) {
		return
	}

	percentage := float64(pbs.ProcessedRecords) / float64(pbs.TotalRecords) * 100

	barLength := 20
	filledLen := int(float64(barLength) * percentage / 100)
	var bar string
	if filledLen == barLength {
		bar = strings.Repeat("=", barLength)
	} else {
		bar = strings.Repeat("=", filledLen) + ">" + strings.Repeat(" ", barLength-filledLen-1)
	}

	currentSpeedRecPerSec := float64(pbs.ProcessedRecords-pbs.LastProcessedRecords) / time.Since(pbs.LastUpdateTime).Seconds()

	var etaStr string
	if pbs.ProcessedRecords > 0 && currentSpeedRecPerSec > 0 {
		remainingRecords := pbs.TotalRecords - pbs.ProcessedRecords
		etaSeconds := float64(remainingRecords) / currentSpeedRecPerSec
		etaStr = fmt.Sprintf("%02d:%02d:%02d remaining",
			int(etaSeconds/3600),
			int(etaSeconds/60)%60,
			int(etaSeconds)%60)
	} else {
		etaStr = "calculating..."
	}

	pbs.LastUpdateTime = time.Now()
	pbs.LastProcessedRecords = pbs.ProcessedRecords

	// Clear the current line and print the new progress
	// \r moves the cursor to the beginning of the line
	fmt.Fprintf(os.Stdout, "\r[INFO] Progress: [%s] %3.0f%% (%d/%d records) | Entries Found: %d | @ %.0f rec/s [%s]    ",
		bar,
		percentage,
		pbs.ProcessedRecords,
		pbs.TotalRecords,
		pbs.EntriesFound,
		currentSpeedRecPerSec,
		etaStr)

	os.Stdout.Sync()
}

// Finish prints a newline, effectively finishing the progress bar output
func (pbs *ProgressBarState) Finish() {
	fmt.Println()
}
