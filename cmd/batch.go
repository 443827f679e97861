package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/parget/internal/utils"
)

// total range requests across parallel batch downloads
const maxConnections = 64

func newBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [YAML_FILE] [--workers N]",
		Short: "Download every entry of a YAML list",
		Long: `Download every entry of a YAML list. Each entry has a required link, an
optional output path (op) and an optional per-entry job count:

  - link: https://example.com/file.iso
    op: isos/file.iso
    jobs: 8`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			batch, err := buildBatchJobs(args[0])
			if err != nil {
				exitWithError(err)
			}
			if len(batch) == 0 {
				exitWithError(&utils.ConfigurationError{Field: "batch", Reason: "no entries in " + args[0]})
			}
			runJobs(cmd.Context(), batch, workers)
		},
	}
	return cmd
}

func buildBatchJobs(listFile string) ([]utils.Job, error) {
	log := utils.GetLogger("batch")
	defaultJobs := jobs
	if workers > 0 && workers*defaultJobs > maxConnections {
		defaultJobs = max(maxConnections/workers, 1)
		log.Debug().Int("jobs", defaultJobs).Msg("Default jobs capped for batch")
	}
	entries, err := utils.ReadDownloadList(listFile, defaultJobs)
	if err != nil {
		return nil, err
	}
	cfg := buildHTTPClientConfig()
	claimed := make(map[string]int)
	var batch []utils.Job
	for i, entry := range entries {
		req := utils.DownloadRequest{
			URL:        entry.URL,
			Jobs:       entry.Jobs,
			OutputPath: utils.ResolveOutputPath(entry.URL, entry.OutputPath),
		}
		if err := utils.ValidateRequest(req); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		if prev, exists := claimed[req.OutputPath]; exists {
			return nil, &utils.ConfigurationError{
				Field:  "batch",
				Reason: fmt.Sprintf("entries %d and %d both write %s; set op for one of them", prev, i+1, req.OutputPath),
			}
		}
		claimed[req.OutputPath] = i + 1
		batch = append(batch, utils.Job{Request: req, HTTPClientConfig: cfg})
	}
	return batch, nil
}
