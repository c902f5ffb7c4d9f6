package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	reconcileRuns       uint64
	reconcileMatches    uint64
	reconcileVariances  uint64
	ticketsImported     uint64
	ticketsImportFailed uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordReconciliation(matches, variances int) {
	atomic.AddUint64(&c.reconcileRuns, 1)
	atomic.AddUint64(&c.reconcileMatches, uint64(max(matches, 0)))
	atomic.AddUint64(&c.reconcileVariances, uint64(max(variances, 0)))
}

func (c *Collector) RecordImport(imported, failed int) {
	atomic.AddUint64(&c.ticketsImported, uint64(max(imported, 0)))
	atomic.AddUint64(&c.ticketsImportFailed, uint64(max(failed, 0)))
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":            total,
		"errorsTotal":              errs,
		"rateLimitedTotal":         limited,
		"avgDurationMs":            avg,
		"totalDurationMs":          totalMs,
		"reconcileRunsTotal":       atomic.LoadUint64(&c.reconcileRuns),
		"reconcileMatchesTotal":    atomic.LoadUint64(&c.reconcileMatches),
		"reconcileVariancesTotal":  atomic.LoadUint64(&c.reconcileVariances),
		"ticketsImportedTotal":     atomic.LoadUint64(&c.ticketsImported),
		"ticketsImportFailedTotal": atomic.LoadUint64(&c.ticketsImportFailed),
	}
}
