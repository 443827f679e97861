package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/parget/internal/output"
	"github.com/tanq16/parget/internal/scheduler"
	"github.com/tanq16/parget/internal/utils"
)

var (
	downloadURL   string
	outputPath    string
	jobs          int
	workers       int
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	debug         bool
	fileLog       bool
	logCloser     io.Closer
)

var PargetVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "parget --url URL [--jobs N] [--output PATH]",
	Short:   "Parget downloads a file over HTTP with parallel byte-range requests",
	Version: PargetVersion,
	Args:    cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		closer, err := utils.InitLogger(debug, fileLog)
		if err != nil {
			return fmt.Errorf("error opening log file: %w", err)
		}
		logCloser = closer
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		req := utils.DownloadRequest{
			URL:        downloadURL,
			Jobs:       jobs,
			OutputPath: utils.ResolveOutputPath(downloadURL, outputPath),
		}
		if err := utils.ValidateRequest(req); err != nil {
			exitWithError(err)
		}
		job := scheduler.NewJob(req, buildHTTPClientConfig())
		log := utils.GetLogger("cmd")
		log.Debug().Str("job", job.ID).Str("url", req.URL).Int("jobs", req.Jobs).Msg("Starting download")
		runJobs(cmd.Context(), []utils.Job{job}, 1)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&downloadURL, "url", "u", "", "URL of the resource to download")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (inferred from the URL if not provided)")
	rootCmd.MarkFlagRequired("url")

	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", utils.DefaultJobs, "Number of parallel range requests per download (above 5 enables high-thread-mode)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 1, "Number of downloads to run in parallel (batch)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 0, "Overall request timeout, 0 for none (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser agent)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")

	// flags without shorthand
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&fileLog, "log-file", false, "Write logs to "+utils.LogFile+" instead of stderr")

	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newProbeCmd())
}

func buildHTTPClientConfig() utils.HTTPClientConfig {
	agent := userAgent
	if agent == "randomize" {
		agent = utils.GetRandomUserAgent()
	}
	cfg := utils.HTTPClientConfig{
		Timeout:       timeout,
		KATimeout:     kaTimeout,
		ProxyURL:      proxyURL,
		ProxyUsername: proxyUsername,
		ProxyPassword: proxyPassword,
		UserAgent:     agent,
		Headers:       utils.ParseHeaderArgs(headers),
	}
	utils.SplitProxyAuth(&cfg)
	return cfg
}

func runJobs(ctx context.Context, batch []utils.Job, numWorkers int) {
	mgr := output.NewManager()
	mgr.StartDisplay()
	_, err := scheduler.Run(ctx, batch, numWorkers, mgr)
	mgr.StopDisplay()
	if err != nil {
		// the summary already lists each failure with its kind
		log := utils.GetLogger("cmd")
		log.Debug().Err(err).Msg("Downloads failed")
		exit(1)
	}
}

func exitWithError(err error) {
	output.PrintError(fmt.Sprintf("%s: %v", utils.ErrorKind(err), err))
	exit(1)
}

func exit(code int) {
	if logCloser != nil {
		logCloser.Close()
	}
	os.Exit(code)
}
