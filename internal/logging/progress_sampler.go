package logging

import "sync"

// ProgressSampler throttles per-item progress logs for batch work such as frame
// recognition. It emits once each time completion crosses a percentage bucket.
// Safe for concurrent use.
type ProgressSampler struct {
	mu         sync.Mutex
	bucketSize int
	lastBucket int
}

// NewProgressSampler constructs a sampler with the given bucket width in
// percent (default 25).
func NewProgressSampler(bucketSize int) *ProgressSampler {
	if bucketSize <= 0 || bucketSize > 100 {
		bucketSize = 25
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether done/total crossed into a new bucket. Completion of
// the batch always logs once.
func (s *ProgressSampler) ShouldLog(done, total int) bool {
	if s == nil {
		return true
	}
	if total <= 0 {
		return false
	}
	if done > total {
		done = total
	}
	bucket := done * 100 / total / s.bucketSize
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket <= s.lastBucket {
		return false
	}
	s.lastBucket = bucket
	return true
}

// Reset clears the sampler state before a new batch.
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.lastBucket = -1
	s.mu.Unlock()
}
