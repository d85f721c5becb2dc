package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ntfsinv/mftinv/internal/scan"
	"github.com/ntfsinv/mftinv/pkg/sysinfo"
)

// newInventoryCommand builds one inventory per successfully processed
// volume, optionally filtered by a set of drive-letter initials.
func newInventoryCommand() *cobra.Command {
	var (
		asJSON   bool
		progress bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "inventory [drive-letters...]",
		Short: "build a path-keyed size inventory of one or more NTFS volumes",
		Long: "Builds a path-keyed size inventory of one or more NTFS volumes by reading\n" +
			"their Master File Table directly from the raw block device. With no\n" +
			"arguments every mounted volume is processed; pass one or more drive-letter\n" +
			"initials (e.g. \"C\" \"D\") to restrict the run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(args, workers)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			sinfo, err := sysinfo.Stat()
			if err != nil || sinfo == nil {
				sinfo = &sysinfo.SysUnknown
			}
			log.Debugf("host %s %s %s", sinfo.Name, sinfo.Release, sinfo.Version)

			results, runErr := scan.Run(scan.Options{
				DriveLetters: cfg.DriveLetters,
				Logger:       log,
				ShowProgress: progress,
				Workers:      cfg.Workers,
			})

			for _, res := range results {
				if asJSON {
					if err := printJSON(cmd, res); err != nil {
						return err
					}
					continue
				}
				printSummary(cmd, res)
			}

			if runErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "[WARN] one or more volumes failed: %v\n", runErr)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit each volume's inventory as JSON instead of a human summary")
	cmd.Flags().BoolVar(&progress, "progress", false, "show a live progress bar while scanning each volume (forces sequential processing)")
	cmd.Flags().IntVar(&workers, "workers", 0, "volumes to process concurrently (default: config file value, or 1)")

	return cmd
}

func printJSON(cmd *cobra.Command, res scan.Result) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res.Inventory)
}

// printSummary prints the volume's mount path, entry count, and its largest
// entries, formatted with humanize for human-facing byte counts.
func printSummary(cmd *cobra.Command, res scan.Result) {
	out := cmd.OutOrStdout()
	root := res.Volume.PrimaryMountPath()

	fmt.Fprintf(out, "== %s (%d entries) ==\n", root, len(res.Inventory))

	type row struct {
		path string
		real uint64
		dir  bool
	}
	var rows []row
	for path, entry := range res.Inventory {
		rows = append(rows, row{path: path, real: entry.RealSize, dir: entry.IsDir})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].real > rows[j].real })

	limit := 10
	if len(rows) < limit {
		limit = len(rows)
	}
	for _, r := range rows[:limit] {
		kind := "file"
		if r.dir {
			kind = "dir"
		}
		fmt.Fprintf(out, "  %10s  %-4s  %s\n", humanize.Bytes(r.real), kind, r.path)
	}
}
