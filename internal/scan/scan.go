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

// Package scan orchestrates the ingestion pipeline: for each volume
// selected by an optional drive-letter filter it opens the raw device,
// bootstraps the MFT, drains the record iterator into a record map, and
// drives the path resolver and aggregator. A failure on one volume is
// recorded and the run moves on to the next.
package scan

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ntfsinv/mftinv/internal/device"
	"github.com/ntfsinv/mftinv/internal/errs"
	"github.com/ntfsinv/mftinv/internal/inventory"
	"github.com/ntfsinv/mftinv/internal/logger"
	"github.com/ntfsinv/mftinv/internal/mft"
	"github.com/ntfsinv/mftinv/internal/ntfs"
	"github.com/ntfsinv/mftinv/internal/volume"
	"github.com/ntfsinv/mftinv/pkg/pbar"
	"github.com/ntfsinv/mftinv/pkg/util/format"
)

// Options controls a Run: the drive-letter whitelist (empty means every
// volume) and how progress and decode warnings are reported.
type Options struct {
	// DriveLetters, if non-empty, restricts processing to volumes whose
	// mount-path set intersects this set of uppercase drive-letter initials.
	DriveLetters []string
	Logger       *logger.Logger
	ShowProgress bool
	// Workers is how many volumes are processed concurrently. Values below 1
	// mean sequential. Volumes share no state, so only the collection of
	// results needs serialising; within each volume the inventory still has a
	// single writer. Progress rendering owns the terminal line, so a progress
	// run is forced sequential.
	Workers int
}

// Result is one successfully processed volume's outcome.
type Result struct {
	Volume    volume.Descriptor
	Inventory inventory.Inventory
}

// Run drives the full pipeline for every volume the enumerator yields that
// passes opts' drive-letter filter. It never aborts on a single volume's
// failure: per-volume errors are collected and returned alongside whatever
// inventories were successfully produced, so a caller gets partial results
// from a run where, say, one volume is locked by another process.
func Run(opts Options) ([]Result, error) {
	log := opts.Logger
	if log == nil {
		log = logger.New(discardWriter{}, logger.InfoLevel)
	}

	filter := driveLetterSet(opts.DriveLetters)

	var selected []volume.Descriptor
	for item := range volume.Enumerate() {
		if item.Err != nil {
			log.Warnf("enumerating volumes: %v", item.Err)
			continue
		}

		vol := item.Descriptor
		if len(vol.MountPaths) == 0 {
			continue // not processable without at least one mount path
		}
		if !vol.MatchesFilter(filter) {
			continue
		}
		selected = append(selected, vol)
	}

	workers := clampWorkers(opts.Workers, len(selected), opts.ShowProgress)

	var (
		mu        sync.Mutex
		results   []Result
		collector errs.Collector
	)

	jobs := make(chan volume.Descriptor)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for vol := range jobs {
				sessionID := uuid.New().String()
				volLog := log.With("volume", vol.DevicePath, "session", sessionID)

				inv, err := RunVolume(vol, volLog, opts.ShowProgress)

				mu.Lock()
				if err != nil {
					volLog.Errorf("scan failed: %v", err)
					collector.Add(vol.DevicePath, err)
				} else {
					results = append(results, Result{Volume: vol, Inventory: inv})
				}
				mu.Unlock()
			}
		}()
	}

	for _, vol := range selected {
		jobs <- vol
	}
	close(jobs)
	wg.Wait()

	return results, collector.Err()
}

// RunVolume drives one volume through bootstrap, decode, and aggregation.
// It is exported separately from Run so a caller that already has a
// specific volume.Descriptor (e.g. from list-volumes output) can scan it
// directly without a fresh enumeration pass.
func RunVolume(vol volume.Descriptor, log *logger.Logger, showProgress bool) (inventory.Inventory, error) {
	devicePath := volume.NormalizeDevicePath(vol.DevicePath)

	h, err := device.Open(devicePath)
	if err != nil {
		return nil, fmt.Errorf("opening device: %w", err)
	}
	defer h.Close()

	reader, err := mft.Bootstrap(h)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping MFT: %w", err)
	}

	log.Infof("bootstrapped MFT: record size %d, %d records", reader.BootSector().RecordSize, reader.RecordCount())

	var bar *pbar.ProgressBarState
	if showProgress {
		bar = pbar.NewProgressBarState(reader.RecordCount())
	}

	records := make(map[uint64]*ntfs.Record, reader.RecordCount())
	for id, res := range reader.Records() {
		if res.Err != nil {
			log.Debugf("record %d: %v", id, res.Err)
		} else if res.Record != nil {
			records[res.Record.ID] = res.Record
		}

		if bar != nil {
			bar.ProcessedRecords++
			bar.EntriesFound = len(records)
			bar.Render(false)
		}
	}
	if bar != nil {
		bar.Render(true)
		bar.Finish()
	}

	log.Infof("decoded %d in-use records", len(records))

	mountPath := vol.PrimaryMountPath()
	resolver := inventory.NewResolver(records, mountPath)
	agg := inventory.NewAggregator()

	var unresolved int
	for _, rec := range records {
		path, ok := resolver.Resolve(rec.ID)
		if !ok {
			unresolved++
			continue
		}
		agg.Add(rec, path)
	}
	if unresolved > 0 {
		log.Warnf("%d records had an unresolved parent chain and were skipped", unresolved)
	}

	inv := agg.Inventory()
	if root, ok := inv[strings.TrimSuffix(mountPath, `\`)]; ok {
		log.Debugf("volume real size %s across %d entries", format.FormatBytes(int64(root.RealSize)), len(inv))
	}

	return inv, nil
}

// ListVolumes surfaces volume enumeration standalone, used directly by the
// CLI's list-volumes verb rather than only implicitly through Run.
func ListVolumes() ([]volume.Descriptor, error) {
	var out []volume.Descriptor
	var collector errs.Collector

	for item := range volume.Enumerate() {
		if item.Err != nil {
			collector.Add("<enumeration>", item.Err)
			continue
		}
		out = append(out, item.Descriptor)
	}
	return out, collector.Err()
}

// clampWorkers bounds the requested worker count to [1, volumes] (0 when
// there are no volumes), forcing 1 when a progress bar owns the terminal line.
func clampWorkers(requested, volumes int, showProgress bool) int {
	if requested < 1 || showProgress {
		requested = 1
	}
	if requested > volumes {
		requested = volumes
	}
	return requested
}

func driveLetterSet(letters []string) map[string]bool {
	if len(letters) == 0 {
		return nil
	}
	set := make(map[string]bool, len(letters))
	for _, l := range letters {
		if l == "" {
			continue
		}
		set[volume.DriveLetter(l+":")] = true
	}
	return set
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
