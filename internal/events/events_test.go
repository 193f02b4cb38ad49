package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failing struct{ Nop }

func (failing) PublishEvent(context.Context, string, string, any) error {
	return errors.New("broker down")
}

func TestEmit_RecordsAndStamps(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, TopicCart, Key(7), Event{Type: CartItemAdded, UserID: 7, ProductID: 3, Quantity: 1})

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, TopicCart, got[0].Topic)
	assert.Equal(t, "7", got[0].Key)
	ev, ok := got[0].Event.(Event)
	require.True(t, ok)
	assert.False(t, ev.OccurredAt.IsZero())
	assert.Equal(t, []string{CartItemAdded}, rec.Types(TopicCart))
	assert.Empty(t, rec.Types(TopicOrder))
}

func TestEmit_IgnoresFailuresAndNil(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), failing{}, TopicOrder, "1", Event{Type: OrderPlaced})
		Emit(context.Background(), nil, TopicOrder, "1", Event{Type: OrderPlaced})
	})
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)

	p, err := NewProducer([]string{"localhost:9092"})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
