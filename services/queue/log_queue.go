package queue

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"stockwatch/models"
)

// LogQueue is a multi-producer, single-consumer queue of log entries
// drained to the standard logger by a background worker. It has the
// same drain discipline as the email queue: stopping waits for every
// queued entry to be written.
type LogQueue struct {
	mu           sync.Mutex
	items        []models.LogEntry
	sink         func(models.LogEntry)
	pollInterval time.Duration
	processing   atomic.Bool
	done         chan struct{}
}

// NewLogQueue creates the queue and starts its worker, draining to
// the standard logger.
func NewLogQueue(pollInterval time.Duration) *LogQueue {
	return NewLogQueueWithSink(pollInterval, writeLogEntry)
}

// NewLogQueueWithSink creates the queue with a custom sink.
func NewLogQueueWithSink(pollInterval time.Duration, sink func(models.LogEntry)) *LogQueue {
	q := &LogQueue{
		sink:         sink,
		pollInterval: pollInterval,
		done:         make(chan struct{}),
	}
	q.processing.Store(true)
	go q.processQueue()
	return q
}

// Queue pushes a log entry onto the queue.
func (q *LogQueue) Queue(entry models.LogEntry) {
	q.mu.Lock()
	q.items = append(q.items, entry)
	q.mu.Unlock()
}

// Info queues an informational entry.
func (q *LogQueue) Info(format string, args ...any) {
	q.Queue(models.NewLogEntry(models.LogInfo, fmt.Sprintf(format, args...)))
}

// Warn queues a warning entry.
func (q *LogQueue) Warn(format string, args ...any) {
	q.Queue(models.NewLogEntry(models.LogWarn, fmt.Sprintf(format, args...)))
}

// Error queues an error entry.
func (q *LogQueue) Error(format string, args ...any) {
	q.Queue(models.NewLogEntry(models.LogError, fmt.Sprintf(format, args...)))
}

// StopProcessingQueue signals the worker to stop and waits for the
// queue to drain.
func (q *LogQueue) StopProcessingQueue() {
	q.processing.Store(false)
	<-q.done
}

func (q *LogQueue) processQueue() {
	defer close(q.done)
	for {
		entry, ok := q.dequeue()
		if ok {
			q.sink(entry)
			continue
		}
		if !q.processing.Load() {
			return
		}
		time.Sleep(q.pollInterval)
	}
}

func (q *LogQueue) dequeue() (models.LogEntry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.LogEntry{}, false
	}
	entry := q.items[0]
	q.items = q.items[1:]
	return entry, true
}

func writeLogEntry(entry models.LogEntry) {
	log.Printf("[%s] EventTime: %s; Message: %s", entry.Level, entry.EventTime.Format(time.RFC3339), entry.Message)
}
