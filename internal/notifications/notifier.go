// Package notifications publishes domain events into Redis channels so
// companion processes (digest mailers, live board updates) can react without
// coupling to the request path.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"echoboard/internal/models"

	"github.com/redis/go-redis/v9"
)

// Event names published on the feedback channels.
const (
	EventStatusChanged      = "feedback.status_changed"
	EventCommentPosted      = "feedback.comment_posted"
	EventAnswerMarked       = "feedback.answer_marked"
	EventChangelogPublished = "changelog.published"
)

// Event is the envelope published for every domain event.
type Event struct {
	Name       string    `json:"name"`
	FeedbackID uint      `json:"feedback_id,omitempty"`
	ActorID    uint      `json:"actor_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client disables publishing, which keeps tests and minimal deployments
// free of a Redis requirement.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishStatusChanged announces a feedback status transition, whether from
// an explicit edit or a cascade.
func (n *Notifier) PublishStatusChanged(ctx context.Context, feedbackID, actorID uint, status models.FeedbackStatus) error {
	return n.publish(ctx, FeedbackChannel(feedbackID), Event{
		Name:       EventStatusChanged,
		FeedbackID: feedbackID,
		ActorID:    actorID,
		Status:     string(status),
		OccurredAt: time.Now(),
	})
}

// PublishCommentPosted announces a new comment under a feedback item.
func (n *Notifier) PublishCommentPosted(ctx context.Context, feedbackID, actorID uint) error {
	return n.publish(ctx, FeedbackChannel(feedbackID), Event{
		Name:       EventCommentPosted,
		FeedbackID: feedbackID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}

// PublishAnswerMarked announces that a comment was designated the answer.
func (n *Notifier) PublishAnswerMarked(ctx context.Context, feedbackID, actorID uint) error {
	return n.publish(ctx, FeedbackChannel(feedbackID), Event{
		Name:       EventAnswerMarked,
		FeedbackID: feedbackID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}

// PublishChangelogPublished announces a new changelog entry on the broadcast
// channel; changelog readers are not subscribed to a single feedback.
func (n *Notifier) PublishChangelogPublished(ctx context.Context, feedbackID, actorID uint) error {
	return n.publish(ctx, BroadcastChannel, Event{
		Name:       EventChangelogPublished,
		FeedbackID: feedbackID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	})
}

func (n *Notifier) publish(ctx context.Context, channel string, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.rdb.Publish(ctx, channel, string(payload)).Err()
}

// StartSubscriber subscribes to the feedback pattern and the broadcast
// channel and calls onEvent for each incoming message. Malformed payloads
// are dropped.
func (n *Notifier) StartSubscriber(ctx context.Context, onEvent func(channel string, event Event)) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "events:feedback:*", BroadcastChannel)
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					log.Printf("dropping malformed event on %s: %v", msg.Channel, err)
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in event subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onEvent(msg.Channel, event)
				}()
			}
		}
	}()

	return nil
}

// BroadcastChannel carries events not scoped to a single feedback item.
const BroadcastChannel = "events:broadcast"

// FeedbackChannel derives the Redis channel name for a feedback item.
func FeedbackChannel(feedbackID uint) string {
	return "events:feedback:" + strconv.FormatUint(uint64(feedbackID), 10)
}
