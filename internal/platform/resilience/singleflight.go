package resilience

import "sync"

// SingleFlight collapses concurrent calls for the same key into one
// execution. Provider clients key it by full request URL, so a burst of
// identical searches costs one upstream GET; the cache store keys it by
// cache key so a cold reference table loads once.
type SingleFlight struct {
	mu       sync.Mutex
	inflight map[string]*flightResult
}

type flightResult struct {
	done sync.WaitGroup
	val  any
	err  error
}

// Do runs fn once per key among concurrent callers and hands everyone
// the same result. The third return is true for callers that waited on
// another caller's execution.
func (f *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	f.mu.Lock()
	if f.inflight == nil {
		f.inflight = make(map[string]*flightResult)
	}
	if existing, ok := f.inflight[key]; ok {
		f.mu.Unlock()
		existing.done.Wait()
		return existing.val, existing.err, true
	}

	result := &flightResult{}
	result.done.Add(1)
	f.inflight[key] = result
	f.mu.Unlock()

	result.val, result.err = fn()
	result.done.Done()

	f.mu.Lock()
	delete(f.inflight, key)
	f.mu.Unlock()

	return result.val, result.err, false
}
