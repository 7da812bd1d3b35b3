package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-whitted-raytracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	RenderID  string    `json:"renderId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "notice", "warning"
}

// Console keeps the most recent render messages for the web UI
type Console struct {
	mu       sync.Mutex
	messages []ConsoleMessage
	capacity int
}

// NewConsole creates a console holding at most capacity messages
func NewConsole(capacity int) *Console {
	if capacity < 1 {
		capacity = 1
	}
	return &Console{capacity: capacity}
}

func (c *Console) append(msg ConsoleMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.messages) == c.capacity {
		copy(c.messages, c.messages[1:])
		c.messages = c.messages[:len(c.messages)-1]
	}
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the buffered messages, oldest first
func (c *Console) Messages() []ConsoleMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ConsoleMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// WebLogger implements core.Logger by forwarding to the server log and
// recording each message on a console
type WebLogger struct {
	renderID string
	console  *Console
	logger   log.Logger
}

// NewWebLogger creates a new web logger for a specific render
func NewWebLogger(renderID string, console *Console, logger log.Logger) *WebLogger {
	return &WebLogger{
		renderID: renderID,
		console:  console,
		logger:   logger,
	}
}

func (wl *WebLogger) record(level, format string, args ...interface{}) {
	if wl.console == nil {
		return
	}
	wl.console.append(ConsoleMessage{
		RenderID:  wl.renderID,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: time.Now(),
		Level:     level,
	})
}

func (wl *WebLogger) Debugf(format string, args ...interface{}) {
	if wl.logger != nil {
		wl.logger.Debugf(format, args...)
	}
	wl.record("debug", format, args...)
}

func (wl *WebLogger) Infof(format string, args ...interface{}) {
	if wl.logger != nil {
		wl.logger.Infof(format, args...)
	}
	wl.record("info", format, args...)
}

func (wl *WebLogger) Noticef(format string, args ...interface{}) {
	if wl.logger != nil {
		wl.logger.Noticef(format, args...)
	}
	wl.record("notice", format, args...)
}

func (wl *WebLogger) Warningf(format string, args ...interface{}) {
	if wl.logger != nil {
		wl.logger.Warningf(format, args...)
	}
	wl.record("warning", format, args...)
}
