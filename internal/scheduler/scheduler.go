package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	pargethttp "github.com/tanq16/parget/internal/downloaders/http"
	"github.com/tanq16/parget/internal/output"
	"github.com/tanq16/parget/internal/utils"
)

// connections above this enable the tuned dialer
const highThreadJobs = 5

type Result struct {
	Job     utils.Job
	Outcome *pargethttp.Outcome
	Err     error
}

// NewJob wraps req with a fresh job ID.
func NewJob(req utils.DownloadRequest, cfg utils.HTTPClientConfig) utils.Job {
	return utils.Job{
		ID:               uuid.NewString(),
		Request:          req,
		HTTPClientConfig: cfg,
	}
}

// Run downloads jobs over numWorkers workers and reports each one on mgr.
// Results keep the order of jobs. The returned error wraps the first failure
// when any job failed.
func Run(ctx context.Context, jobs []utils.Job, numWorkers int, mgr *output.Manager) ([]Result, error) {
	if numWorkers < 1 {
		return nil, &utils.ConfigurationError{Field: "workers", Reason: fmt.Sprintf("must be at least 1, got %d", numWorkers)}
	}
	log := utils.GetLogger("scheduler")
	results := make([]Result, len(jobs))

	jobCh := make(chan int, len(jobs))
	for i := range jobs {
		if jobs[i].ID == "" {
			jobs[i].ID = uuid.NewString()
		}
		jobCh <- i
	}
	close(jobCh)

	var wg sync.WaitGroup
	for range min(numWorkers, max(len(jobs), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobCh {
				results[i] = processJob(ctx, jobs[i], mgr)
			}
		}()
	}
	wg.Wait()

	var failed int
	var firstErr error
	for _, r := range results {
		if r.Err != nil {
			failed++
			if firstErr == nil {
				firstErr = r.Err
			}
		}
	}
	log.Debug().Int("jobs", len(jobs)).Int("failed", failed).Msg("Scheduler finished")
	if firstErr != nil {
		return results, fmt.Errorf("%d of %d downloads failed: %w", failed, len(jobs), firstErr)
	}
	return results, nil
}

func processJob(ctx context.Context, job utils.Job, mgr *output.Manager) Result {
	req := job.Request
	funcID := mgr.RegisterFunction(req.OutputPath)
	log := utils.GetLogger("http").With().Str("job", job.ID).Logger()

	cfg := job.HTTPClientConfig
	cfg.HighThreadMode = req.Jobs > highThreadJobs
	downloader := pargethttp.NewHTTPDownloader(utils.NewHTTPClient(cfg), log)

	mgr.SetStatus(funcID, output.StatusActive)
	mgr.SetMessage(funcID, fmt.Sprintf("Downloading %s", req.OutputPath))
	onProgress := func(completed, total int64) {
		mgr.AddProgressBarToStream(funcID, completed, total)
		if job.ProgressFunc != nil {
			job.ProgressFunc(completed, total)
		}
	}
	outcome, err := downloader.Download(ctx, req, onProgress)
	if err != nil {
		mgr.ReportError(funcID, err)
		return Result{Job: job, Outcome: outcome, Err: err}
	}
	mgr.Complete(funcID, CompletionMessage(req.OutputPath, outcome))
	return Result{Job: job, Outcome: outcome}
}

func CompletionMessage(path string, outcome *pargethttp.Outcome) string {
	return fmt.Sprintf("Completed %s (%s in %s)", path, output.FormatBytes(outcome.Completed), outcome.Elapsed.Round(time.Millisecond))
}
