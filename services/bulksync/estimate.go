package bulksync

import (
	"fmt"
	"math"
	"time"
)

// EstimateDuration predicts how long a run of itemCount items takes under the
// flat pacing interval: one delay per batch.
func EstimateDuration(itemCount, batchSize int, delay time.Duration) time.Duration {
	if itemCount <= 0 {
		return 0
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batches := (itemCount + batchSize - 1) / batchSize
	return time.Duration(batches) * delay
}

// FormatEstimate renders a duration for the import confirmation prompt:
// seconds when under a minute, otherwise whole minutes rounded up.
func FormatEstimate(d time.Duration) string {
	if d < time.Minute {
		seconds := int(math.Ceil(d.Seconds()))
		if seconds == 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", seconds)
	}
	minutes := int(math.Ceil(d.Minutes()))
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Percent converts progress into a rounded percentage, guarded against an
// empty job.
func Percent(current, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(total) * 100))
}
