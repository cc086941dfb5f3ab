package queue

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"stockwatch/models"
)

// Sender delivers one email synchronously. Satisfied by the SMTP
// mailer; tests supply counting stubs.
type Sender interface {
	SendMessage(recipient, subject, body string) error
}

// EmailQueue is a multi-producer, single-consumer outbound email
// queue. Producers enqueue and return immediately; a background worker
// drains the queue and hands each message to the sender outside the
// lock. Delivery failures are logged and the message is dropped.
type EmailQueue struct {
	mu           sync.Mutex
	items        []models.EmailMessage
	sender       Sender
	pollInterval time.Duration
	processing   atomic.Bool
	done         chan struct{}
}

// NewEmailQueue creates the queue and starts its worker.
func NewEmailQueue(sender Sender, pollInterval time.Duration) *EmailQueue {
	q := &EmailQueue{
		sender:       sender,
		pollInterval: pollInterval,
		done:         make(chan struct{}),
	}
	q.processing.Store(true)
	go q.processQueue()
	return q
}

// QueueEmail pushes a message onto the queue. Never blocks on delivery.
func (q *EmailQueue) QueueEmail(recipient, subject, body string) {
	q.mu.Lock()
	q.items = append(q.items, models.EmailMessage{Recipient: recipient, Subject: subject, Body: body})
	q.mu.Unlock()
}

// StopProcessingQueue signals the worker to stop and waits until every
// message enqueued before the call has been handed to the sender.
func (q *EmailQueue) StopProcessingQueue() {
	q.processing.Store(false)
	<-q.done
}

func (q *EmailQueue) processQueue() {
	defer close(q.done)
	for {
		item, ok := q.dequeue()
		if ok {
			q.process(item)
			continue
		}
		if !q.processing.Load() {
			return
		}
		time.Sleep(q.pollInterval)
	}
}

func (q *EmailQueue) dequeue() (models.EmailMessage, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return models.EmailMessage{}, false
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item, true
}

func (q *EmailQueue) process(item models.EmailMessage) {
	if err := q.sender.SendMessage(item.Recipient, item.Subject, item.Body); err != nil {
		// No retry: log and drop.
		log.Printf("email queue: send %q failed: %v", item.Subject, err)
		return
	}
	log.Printf("email queue: sent %q", item.Subject)
}
