package build

import (
	"sync"
	"time"
)

// Metrics tracks build performance across runs.
type Metrics struct {
	TotalBuilds      int64         `json:"total_builds" yaml:"total_builds"`
	SuccessfulBuilds int64         `json:"successful_builds" yaml:"successful_builds"`
	FailedBuilds     int64         `json:"failed_builds" yaml:"failed_builds"`
	CacheHits        int64         `json:"cache_hits" yaml:"cache_hits"`
	AverageDuration  time.Duration `json:"average_duration" yaml:"average_duration"`
	TotalDuration    time.Duration `json:"total_duration" yaml:"total_duration"`
}

type metrics struct {
	mutex sync.RWMutex
	m     Metrics
}

func (bm *metrics) record(result Result) {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()

	bm.m.TotalBuilds++
	bm.m.TotalDuration += result.Duration
	if result.CacheHit {
		bm.m.CacheHits++
	}
	if result.Err != nil {
		bm.m.FailedBuilds++
	} else {
		bm.m.SuccessfulBuilds++
	}
	bm.m.AverageDuration = bm.m.TotalDuration / time.Duration(bm.m.TotalBuilds)
}

func (bm *metrics) snapshot() Metrics {
	bm.mutex.RLock()
	defer bm.mutex.RUnlock()
	return bm.m
}

func (bm *metrics) reset() {
	bm.mutex.Lock()
	defer bm.mutex.Unlock()
	bm.m = Metrics{}
}

// CacheHitRate returns the cache hit rate as a percentage
func (m Metrics) CacheHitRate() float64 {
	if m.TotalBuilds == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalBuilds) * 100.0
}

// SuccessRate returns the success rate as a percentage
func (m Metrics) SuccessRate() float64 {
	if m.TotalBuilds == 0 {
		return 0.0
	}
	return float64(m.SuccessfulBuilds) / float64(m.TotalBuilds) * 100.0
}
