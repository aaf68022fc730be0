package server

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/df07/go-stratified-raytracer/pkg/core"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "info", "warning", "error"
}

// Console keeps the most recent messages of one render job
type Console struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	limit    int
	dropped  int
}

// NewConsole creates a console holding at most limit messages
func NewConsole(limit int) *Console {
	if limit < 1 {
		limit = 1
	}
	return &Console{limit: limit}
}

// Append adds a message, discarding the oldest one when full
func (c *Console) Append(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == c.limit {
		c.messages = c.messages[1:]
		c.dropped++
	}
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the retained messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ConsoleMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Dropped returns how many messages were discarded
func (c *Console) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// JobLogger implements core.Logger by recording messages on a job console
type JobLogger struct {
	jobID   string
	console *Console
	out     io.Writer
}

// NewJobLogger creates a logger for a specific job. Messages are also echoed
// to out, prefixed with the job ID, when out is non-nil.
func NewJobLogger(jobID string, console *Console, out io.Writer) core.Logger {
	return &JobLogger{
		jobID:   jobID,
		console: console,
		out:     out,
	}
}

// Printf implements core.Logger interface
func (jl *JobLogger) Printf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if jl.out != nil {
		fmt.Fprintf(jl.out, "[%s] %s", jl.jobID, message)
	}

	if jl.console != nil {
		jl.console.Append(ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "info",
		})
	}
}

// Errorf records an error-level message
func (jl *JobLogger) Errorf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	if jl.out != nil {
		fmt.Fprintf(jl.out, "[%s] error: %s", jl.jobID, message)
	}

	if jl.console != nil {
		jl.console.Append(ConsoleMessage{
			Message:   message,
			Timestamp: time.Now(),
			Level:     "error",
		})
	}
}
