package runner

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

const (
	fingerprintSample  = 10
	fingerprintHistory = 5
	stuckThreshold     = 3
)

// stuckDetector notices when pagination stops making progress: when the
// same set of leading listing URLs keeps coming back, the board is serving
// the same page over and over.
type stuckDetector struct {
	history []string
}

func newStuckDetector() *stuckDetector {
	return &stuckDetector{}
}

// Observe records the fingerprint of a results page and reports whether
// the crawl is stuck.
func (d *stuckDetector) Observe(urls []string) bool {
	print := fingerprint(urls)

	d.history = append(d.history, print)
	if len(d.history) > fingerprintHistory {
		d.history = d.history[len(d.history)-fingerprintHistory:]
	}

	seen := 0
	for _, previous := range d.history {
		if previous == print {
			seen++
		}
	}
	return seen >= stuckThreshold
}

// fingerprint hashes the first page-worth of listing URLs, sorted so the
// board reshuffling the same results does not look like progress.
func fingerprint(urls []string) string {
	if len(urls) > fingerprintSample {
		urls = urls[:fingerprintSample]
	}
	sample := make([]string, len(urls))
	copy(sample, urls)
	sort.Strings(sample)

	h := fnv.New64a()
	_, _ = h.Write([]byte(strings.Join(sample, "\n")))
	return fmt.Sprintf("%x", h.Sum64())
}
