package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	pargethttp "github.com/tanq16/parget/internal/downloaders/http"
	"github.com/tanq16/parget/internal/output"
	"github.com/tanq16/parget/internal/utils"
)

func newProbeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [URL]",
		Short: "Show the size and range support of a resource without downloading it",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			link := args[0]
			if err := utils.ValidateRequest(utils.DownloadRequest{URL: link, Jobs: 1, OutputPath: utils.DefaultOutputName}); err != nil {
				exitWithError(err)
			}
			downloader := pargethttp.NewHTTPDownloader(utils.NewHTTPClient(buildHTTPClientConfig()), utils.GetLogger("http"))
			meta, err := downloader.Probe(cmd.Context(), link)
			if err != nil {
				exitWithError(err)
			}
			output.PrintHeader(link)
			output.PrintField("Size:", fmt.Sprintf("%s (%d bytes)", output.FormatBytes(meta.TotalSize), meta.TotalSize))
			if meta.SupportsRanges {
				output.PrintField("Ranges:", "supported")
			} else {
				output.PrintField("Ranges:", "not supported (single stream)")
			}
			output.PrintField("Jobs:", fmt.Sprint(effectiveJobs(meta, jobs)))
		},
	}
	return cmd
}

func effectiveJobs(meta utils.ResourceMetadata, requested int) int {
	if !meta.SupportsRanges || requested < 1 {
		return 1
	}
	return pargethttp.EffectiveJobs(meta.TotalSize, requested)
}
