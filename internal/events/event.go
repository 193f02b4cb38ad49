package events

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	UserRegistered  = "user_registered"
	UserDeleted     = "user_deleted"
	ProductCreated  = "product_created"
	ProductUpdated  = "product_updated"
	ProductDeleted  = "product_deleted"
	CartItemAdded   = "cart_item_added"
	CartItemRemoved = "cart_item_removed"
	OrderPlaced     = "order_placed"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"user_id,omitempty"`
	ProductID  uint      `json:"product_id,omitempty"`
	Quantity   uint      `json:"quantity,omitempty"`
	Items      int       `json:"items,omitempty"`
	Total      string    `json:"total,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

func Key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Emit publishes ev and only logs a failure.
func Emit(ctx context.Context, p Publisher, topic, key string, ev Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	if err := p.PublishEvent(ctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", ev.Type, "error", err)
	}
}
