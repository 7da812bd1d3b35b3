package renderer

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/cpu"

	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Band is a contiguous range of image rows [Start, End)
type Band struct {
	Start int
	End   int
}

// Rows returns the number of rows in the band
func (b Band) Rows() int {
	return b.End - b.Start
}

// SplitBands divides height rows into at most workers contiguous bands of
// ceil(height/workers) rows. The last band may be shorter; empty bands are
// dropped.
func SplitBands(height, workers int) []Band {
	if height <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	rows := (height + workers - 1) / workers

	bands := make([]Band, 0, workers)
	for start := 0; start < height; start += rows {
		bands = append(bands, Band{Start: start, End: min(start+rows, height)})
	}
	return bands
}

// ResolveWorkers returns hint when positive, otherwise the number of
// logical CPUs on the host
func ResolveWorkers(hint int) int {
	if hint > 0 {
		return hint
	}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// BandTask represents a band rendering task for the worker pool
type BandTask struct {
	TaskID int          // For deterministic ordering
	Band   Band         // Rows to render
	Frame  *FrameBuffer // Shared frame to write to
}

// BandResult contains the result from rendering a band
type BandResult struct {
	TaskID int
	Stats  BandStats
}

// WorkerPool manages parallel band rendering. The partition is static: each
// worker has its own queue and band i always goes to worker i mod n.
type WorkerPool struct {
	resultQueue chan BandResult
	workers     []*Worker
	wg          sync.WaitGroup
}

// Worker handles individual band rendering tasks
type Worker struct {
	ID          int
	raytracer   *Raytracer
	taskQueue   chan BandTask
	resultQueue chan BandResult
}

// NewWorkerPool creates a worker pool with the specified number of workers,
// each with its own raytracer
func NewWorkerPool(s *scene.Scene, camera *Camera, config Config, numWorkers int) *WorkerPool {
	numWorkers = ResolveWorkers(numWorkers)

	wp := &WorkerPool{
		resultQueue: make(chan BandResult, numWorkers),
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			raytracer:   NewRaytracer(s, camera, config),
			taskQueue:   make(chan BandTask, 1),
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	for _, worker := range wp.workers {
		close(worker.taskQueue) // No more tasks
	}
	wp.wg.Wait() // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask hands a band task to the worker that owns its TaskID
func (wp *WorkerPool) SubmitTask(task BandTask) {
	wp.workers[task.TaskID%len(wp.workers)].taskQueue <- task
}

// GetResult retrieves a completed band result
func (wp *WorkerPool) GetResult() (BandResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		w.raytracer.ResetCounts()
		start := time.Now()

		// Bands never overlap, so writing to the shared frame is safe
		w.raytracer.RenderBand(task.Band, task.Frame)

		w.resultQueue <- BandResult{
			TaskID: task.TaskID,
			Stats: BandStats{
				Band:     task.Band,
				Worker:   w.ID,
				Rays:     w.raytracer.Counts(),
				Duration: time.Since(start),
			},
		}
	}
}
