package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
)

// ErrRenderPanic wraps a panic recovered from a render task
var ErrRenderPanic = errors.New("render panicked")

// RenderTask is a complete render executed by one worker.
// Each render stays single-threaded; the pool only runs independent renders side by side.
type RenderTask struct {
	TaskID    int
	Raytracer *Raytracer
	Sink      Sink
}

// TaskResult contains the result from rendering a task
type TaskResult struct {
	TaskID int
	Stats  RenderStats
	Error  error
}

// WorkerPool manages concurrent render jobs
type WorkerPool struct {
	taskQueue   chan RenderTask
	resultQueue chan TaskResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
	startOnce   sync.Once
	stopOnce    sync.Once
}

// Worker handles individual render tasks
type Worker struct {
	ID          int
	taskQueue   <-chan RenderTask
	resultQueue chan<- TaskResult
}

// NewWorkerPool creates a worker pool with the specified number of workers
// and room for queueSize pending tasks
func NewWorkerPool(numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if queueSize < numWorkers {
		queueSize = numWorkers
	}

	wp := &WorkerPool{
		taskQueue:   make(chan RenderTask, queueSize),
		resultQueue: make(chan TaskResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		wp.workers = append(wp.workers, &Worker{
			ID:          i,
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		})
	}

	return wp
}

// Start begins all workers
func (wp *WorkerPool) Start() {
	wp.startOnce.Do(func() {
		for _, worker := range wp.workers {
			wp.wg.Add(1)
			go worker.run(&wp.wg)
		}
	})
}

// Stop gracefully shuts down all workers after the queued tasks finish
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.taskQueue) // No more tasks
		wp.wg.Wait()        // Wait for workers to finish
		close(wp.resultQueue)
	})
}

// SubmitTask submits a render task to the worker pool
func (wp *WorkerPool) SubmitTask(task RenderTask) {
	wp.taskQueue <- task
}

// TrySubmitTask submits a task without blocking and reports whether it was queued
func (wp *WorkerPool) TrySubmitTask(task RenderTask) bool {
	select {
	case wp.taskQueue <- task:
		return true
	default:
		return false
	}
}

// GetResult retrieves a completed task result
func (wp *WorkerPool) GetResult() (TaskResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		stats, err := w.render(task)
		w.resultQueue <- TaskResult{
			TaskID: task.TaskID,
			Stats:  stats,
			Error:  err,
		}
	}
}

// render runs one task, reporting a panic as the task's error so the worker keeps serving
func (w *Worker) render(task RenderTask) (stats RenderStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: worker %d task %d: %v", ErrRenderPanic, w.ID, task.TaskID, r)
		}
	}()
	return task.Raytracer.Render(task.Sink)
}
