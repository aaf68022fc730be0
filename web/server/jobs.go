package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"
	"time"

	"github.com/df07/go-stratified-raytracer/pkg/output"
	"github.com/df07/go-stratified-raytracer/pkg/renderer"
	"github.com/df07/go-stratified-raytracer/pkg/scene"
)

// ErrQueueFull is returned when no job slot is available
var ErrQueueFull = errors.New("render queue is full")

// ErrJobNotFound is returned for unknown job IDs
var ErrJobNotFound = errors.New("render job not found")

// JobStatus is the lifecycle state of a render job
type JobStatus string

const (
	JobQueued  JobStatus = "queued"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

const consoleLimit = 100

// Job is one asynchronous render
type Job struct {
	ID        string
	Scene     string
	Width     int
	Height    int
	Samples   int
	MaxDepth  int
	CreatedAt time.Time

	mu         sync.RWMutex
	status     JobStatus
	startedAt  time.Time
	finishedAt time.Time
	stats      renderer.RenderStats
	luminance  float64
	err        error
	image      *image.RGBA
	png        []byte
	s3Key      string

	console *Console
	done    chan struct{}
}

// JobView is the JSON representation of a job
type JobView struct {
	ID         string           `json:"id"`
	Scene      string           `json:"scene"`
	Status     JobStatus        `json:"status"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Samples    int              `json:"samplesPerPixel"`
	MaxDepth   int              `json:"maxDepth"`
	CreatedAt  time.Time        `json:"createdAt"`
	StartedAt  *time.Time       `json:"startedAt,omitempty"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
	Stats      *Stats           `json:"stats,omitempty"`
	Error      string           `json:"error,omitempty"`
	S3Key      string           `json:"s3Key,omitempty"`
	Console    []ConsoleMessage `json:"console"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels       int     `json:"totalPixels"`
	TotalSamples      int     `json:"totalSamples"`
	RaysCast          int64   `json:"raysCast"`
	IntersectionTests int64   `json:"intersectionTests"`
	ElapsedMs         int64   `json:"elapsedMs"`
	RaysPerSecond     float64 `json:"raysPerSecond"`
	AverageLuminance  float64 `json:"averageLuminance"`
}

func newStats(s renderer.RenderStats, luminance float64) *Stats {
	return &Stats{
		TotalPixels:       s.TotalPixels,
		TotalSamples:      s.TotalSamples,
		RaysCast:          s.RaysCast,
		IntersectionTests: s.IntersectionTests,
		ElapsedMs:         s.Elapsed.Milliseconds(),
		RaysPerSecond:     s.RaysPerSecond(),
		AverageLuminance:  luminance,
	}
}

// View returns a consistent snapshot of the job
func (j *Job) View() JobView {
	j.mu.RLock()
	defer j.mu.RUnlock()

	view := JobView{
		ID:        j.ID,
		Scene:     j.Scene,
		Status:    j.status,
		Width:     j.Width,
		Height:    j.Height,
		Samples:   j.Samples,
		MaxDepth:  j.MaxDepth,
		CreatedAt: j.CreatedAt,
		S3Key:     j.s3Key,
		Console:   j.console.Messages(),
	}
	if !j.startedAt.IsZero() {
		started := j.startedAt
		view.StartedAt = &started
	}
	if !j.finishedAt.IsZero() {
		finished := j.finishedAt
		view.FinishedAt = &finished
		view.Stats = newStats(j.stats, j.luminance)
	}
	if j.err != nil {
		view.Error = j.err.Error()
	}
	return view
}

// Status returns the current job state
func (j *Job) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// Done is closed when the job has finished, successfully or not
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Result returns the finished image and its PNG encoding, or nil while incomplete
func (j *Job) Result() (*image.RGBA, []byte) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.image, j.png
}

// jobSink encodes the render to PNG in memory and marks the job running on Open
type jobSink struct {
	job *Job
	buf bytes.Buffer
	png *output.PNGSink
}

func newJobSink(job *Job, resize output.ResizeOptions) *jobSink {
	s := &jobSink{job: job}
	s.png = output.NewPNGSink(&s.buf, resize)
	return s
}

func (s *jobSink) Open(width, height int) error {
	s.job.mu.Lock()
	s.job.status = JobRunning
	s.job.startedAt = time.Now()
	s.job.mu.Unlock()
	return s.png.Open(width, height)
}

func (s *jobSink) WritePixel(c color.RGBA) error {
	return s.png.WritePixel(c)
}

func (s *jobSink) Close() error {
	if err := s.png.Close(); err != nil {
		return err
	}
	s.job.mu.Lock()
	s.job.image = s.png.Image()
	s.job.png = s.buf.Bytes()
	s.job.mu.Unlock()
	return nil
}

// JobManager queues render jobs on a worker pool and tracks their results
type JobManager struct {
	pool     *renderer.WorkerPool
	uploader *output.S3Uploader
	resize   output.ResizeOptions
	logOut   io.Writer

	mu      sync.RWMutex
	jobs    map[string]*Job
	tasks   map[int]*Job
	nextID  int
	stopped bool

	collectorDone chan struct{}
}

// NewJobManager starts a pool of numWorkers renderers with queueSize pending slots.
// A nil uploader disables publishing to S3.
func NewJobManager(numWorkers, queueSize int, uploader *output.S3Uploader, resize output.ResizeOptions, logOut io.Writer) *JobManager {
	m := &JobManager{
		pool:          renderer.NewWorkerPool(numWorkers, queueSize),
		uploader:      uploader,
		resize:        resize,
		logOut:        logOut,
		jobs:          make(map[string]*Job),
		tasks:         make(map[int]*Job),
		collectorDone: make(chan struct{}),
	}
	m.pool.Start()
	go m.collect()
	return m
}

// NumWorkers returns the number of concurrent renders
func (m *JobManager) NumWorkers() int {
	return m.pool.GetNumWorkers()
}

// Submit queues a render of preset and returns the new job
func (m *JobManager) Submit(preset *scene.Preset) (*Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return nil, ErrQueueFull
	}

	m.nextID++
	taskID := m.nextID
	job := &Job{
		ID:        fmt.Sprintf("render-%d", taskID),
		Scene:     preset.Name,
		Width:     preset.CameraConfig.Width,
		Height:    preset.CameraConfig.Height,
		Samples:   preset.CameraConfig.Samples * preset.CameraConfig.Samples,
		MaxDepth:  preset.SamplingConfig.MaxDepth,
		CreatedAt: time.Now(),
		status:    JobQueued,
		console:   NewConsole(consoleLimit),
		done:      make(chan struct{}),
	}

	// Progress messages every second are enough for a polling client
	preset.SamplingConfig.ProgressInterval = time.Second
	rt, err := preset.NewRaytracer(NewJobLogger(job.ID, job.console, m.logOut))
	if err != nil {
		return nil, err
	}

	task := renderer.RenderTask{TaskID: taskID, Raytracer: rt, Sink: newJobSink(job, m.resize)}
	m.tasks[taskID] = job
	if !m.pool.TrySubmitTask(task) {
		delete(m.tasks, taskID)
		return nil, ErrQueueFull
	}
	m.jobs[job.ID] = job
	return job, nil
}

// Get returns the job with the given ID
func (m *JobManager) Get(id string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, fmt.Errorf("%q: %w", id, ErrJobNotFound)
	}
	return job, nil
}

// Stop waits for queued jobs to finish and shuts the pool down
func (m *JobManager) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()

	m.pool.Stop()
	<-m.collectorDone
}

func (m *JobManager) collect() {
	defer close(m.collectorDone)

	for {
		result, ok := m.pool.GetResult()
		if !ok {
			return
		}

		m.mu.Lock()
		job := m.tasks[result.TaskID]
		delete(m.tasks, result.TaskID)
		m.mu.Unlock()

		if job != nil {
			m.finish(job, result)
		}
	}
}

func (m *JobManager) finish(job *Job, result renderer.TaskResult) {
	logger := NewJobLogger(job.ID, job.console, m.logOut).(*JobLogger)

	var s3Key string
	if result.Error == nil && m.uploader != nil {
		_, data := job.Result()
		key := fmt.Sprintf("renders/%s.png", job.ID)
		if err := m.uploader.UploadPNG(context.Background(), key, data); err != nil {
			logger.Errorf("Upload failed: %v\n", err)
		} else {
			s3Key = key
			logger.Printf("Uploaded to s3://%s/%s\n", m.uploader.Bucket(), key)
		}
	}

	job.mu.Lock()
	job.stats = result.Stats
	if job.image != nil {
		job.luminance = renderer.CalculateAverageLuminance(job.image)
	}
	job.finishedAt = time.Now()
	job.s3Key = s3Key
	if result.Error != nil {
		job.status = JobFailed
		job.err = result.Error
	} else {
		job.status = JobDone
	}
	job.mu.Unlock()

	if result.Error != nil {
		logger.Errorf("Render failed: %v\n", result.Error)
	}
	close(job.done)
}
