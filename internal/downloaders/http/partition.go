package pargethttp

import (
	"fmt"

	"github.com/tanq16/parget/internal/utils"
)

// EffectiveJobs clamps jobs so no range is ever empty: at most one range
// per byte, and at least one range.
func EffectiveJobs(totalSize int64, jobs int) int {
	if int64(jobs) > totalSize {
		return int(max(totalSize, 1))
	}
	return jobs
}

// Partition splits [0, totalSize) into contiguous inclusive ranges of
// totalSize/jobs bytes each, the last range absorbing the remainder. jobs is
// clamped with EffectiveJobs first; an empty resource yields no ranges.
func Partition(totalSize int64, jobs int) ([]utils.ByteRange, error) {
	if jobs < 1 {
		return nil, &utils.ConfigurationError{Field: "jobs", Reason: fmt.Sprintf("must be at least 1, got %d", jobs)}
	}
	if totalSize < 0 {
		return nil, &utils.ConfigurationError{Field: "size", Reason: fmt.Sprintf("negative total size %d", totalSize)}
	}
	if totalSize == 0 {
		return nil, nil
	}
	jobs = EffectiveJobs(totalSize, jobs)
	base := totalSize / int64(jobs)
	ranges := make([]utils.ByteRange, jobs)
	for i := range jobs {
		start := int64(i) * base
		end := start + base - 1
		if i == jobs-1 {
			end = totalSize - 1
		}
		ranges[i] = utils.ByteRange{Start: start, End: end}
	}
	return ranges, nil
}
