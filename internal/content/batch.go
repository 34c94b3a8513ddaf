package content

import (
	"sync"

	"github.com/jadenpxrk/codeshelf/internal/logging"
)

// Outcome is the result of loading one path of a batch.
type Outcome struct {
	Path    string
	Decoded Decoded
	Err     error
}

type job struct {
	index int
	path  string
}

// LoadBatch loads every path and returns outcomes in the same order as paths.
// With workers <= 1 the files are read one after another; otherwise a pool of
// that many goroutines reads them concurrently. A failure only affects its
// own outcome.
func LoadBatch(paths []string, workers int) []Outcome {
	outcomes := make([]Outcome, len(paths))
	if workers <= 1 || len(paths) <= 1 {
		for i, p := range paths {
			outcomes[i] = loadOne(p)
		}
		return outcomes
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	jobs := make(chan job, len(paths))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go loadWorker(jobs, outcomes, &wg)
	}
	for i, p := range paths {
		jobs <- job{index: i, path: p}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// loadWorker writes each result into its own slot, so no locking is needed.
func loadWorker(jobs <-chan job, outcomes []Outcome, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		outcomes[j.index] = loadOne(j.path)
	}
}

func loadOne(path string) Outcome {
	decoded, err := Load(path)
	if err != nil {
		logging.Debug("could not load file", logging.String("path", path), logging.Err(err))
	}
	return Outcome{Path: path, Decoded: decoded, Err: err}
}
