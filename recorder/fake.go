package recorder

import "sync"

// Fake is a scriptable Recorder for state-machine tests. Error and path
// fields are read under the same lock the counters use, so tests may
// adjust them between calls.
type Fake struct {
	mu        sync.Mutex
	StartErr  error
	StopPath  string
	StopErr   error
	CancelErr error

	starts  int
	stops   int
	cancels int

	levels chan Level
}

func NewFake() *Fake {
	return &Fake{levels: make(chan Level, 64)}
}

func (f *Fake) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	return f.StartErr
}

func (f *Fake) Stop() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return f.StopPath, f.StopErr
}

func (f *Fake) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	return f.CancelErr
}

func (f *Fake) Levels() <-chan Level { return f.levels }

func (f *Fake) Starts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts
}

func (f *Fake) Stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *Fake) Cancels() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancels
}

// SimLevel injects an amplitude sample as if capture were active.
func (f *Fake) SimLevel(lvl Level) {
	f.levels <- lvl
}
