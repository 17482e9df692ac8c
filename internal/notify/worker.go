// Package notify pushes schedule-change events to subscribed browsers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"or-schedule-backend/internal/model"
)

// Event describes one change to the case set.
type Event struct {
	Kind   string `json:"kind"` // "case_added", "case_moved", "schedule_compacted", ...
	Detail string `json:"detail"`
}

// PushSender defines the interface for sending a web push notification.
type PushSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real PushSender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans schedule events out to every stored subscription.
type WorkerPool struct {
	size    int
	jobs    chan Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  PushSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Event, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case event := <-wp.jobs:
			wp.broadcast(ctx, event)
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an event for delivery. It never blocks the scheduling
// path: when the queue is full the event is dropped with a log line.
func (wp *WorkerPool) Dispatch(event Event) {
	select {
	case wp.jobs <- event:
	default:
		log.Printf("Notification queue full, dropping %s event", event.Kind)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Event {
	return wp.jobs
}

// broadcast sends the event to every stored subscription.
func (wp *WorkerPool) broadcast(ctx context.Context, event Event) {
	if wp.webpush == nil || wp.webpush.VAPIDPublicKey == "" {
		return
	}

	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for %s event: %v", event.Kind, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", event.Kind, err)
		return
	}

	log.Printf("Sending %d notifications for %s event", len(subscriptions), event.Kind)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, payload)
	}
}

// sendNotification sends a single web push notification, pruning
// subscriptions the push service reports as gone.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		log.Printf("Subscription %s is gone, removing", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("Error removing stale subscription: %v", err)
		}
		return
	}
	if resp.StatusCode >= 300 {
		log.Printf("Push service returned %d for %s", resp.StatusCode, sub.Endpoint)
	}
}

// CaseAdded builds the event for a newly scheduled case.
func CaseAdded(c model.Case) Event {
	return Event{Kind: "case_added", Detail: fmt.Sprintf("%s added in %s at %s", c.Procedure, c.Room, c.StartTime)}
}

// CaseMoved builds the event for a drag operation.
func CaseMoved(c model.Case) Event {
	return Event{Kind: "case_moved", Detail: fmt.Sprintf("%s moved to %s at %s", c.Procedure, c.Room, c.StartTime)}
}

// ScheduleRewritten builds the event for a compaction or optimization pass.
func ScheduleRewritten(kind string, caseCount int) Event {
	return Event{Kind: kind, Detail: fmt.Sprintf("%d cases re-sequenced", caseCount)}
}
