package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderRecordingHook struct {
	BaseHook
	id    int
	order *[]int
}

func (h *orderRecordingHook) OnBeforeSendBatch(peerID uint64, d DeliveryClass) {
	*h.order = append(*h.order, h.id)
}

func TestHookPipeline_RegistrationOrder(t *testing.T) {
	p := NewHookPipeline()
	var order []int
	p.Register(&orderRecordingHook{id: 1, order: &order})
	p.Register(&orderRecordingHook{id: 2, order: &order})
	p.Register(&orderRecordingHook{id: 3, order: &order})

	p.beforeSendBatch(1, DeliveryUnreliable)

	assert.Equal(t, []int{1, 2, 3}, order)
}

type countingVeto struct {
	BaseHook
	calls *int
	deny  bool
}

func (h *countingVeto) CanSend(peerID uint64, tag MessageTag, d DeliveryClass) bool {
	*h.calls++
	return !h.deny
}

func TestHookPipeline_PredicateShortCircuits(t *testing.T) {
	p := NewHookPipeline()
	var firstCalls, secondCalls int
	p.Register(&countingVeto{calls: &firstCalls, deny: true})
	p.Register(&countingVeto{calls: &secondCalls, deny: false})

	ok := p.canSend(1, 0, DeliveryUnreliable)

	assert.False(t, ok)
	assert.Equal(t, 1, firstCalls)
	assert.Equal(t, 0, secondCalls, "second hook must not run after first vetoes")
}

func TestHookPipeline_Unregister(t *testing.T) {
	p := NewHookPipeline()
	var order []int
	id := p.Register(&orderRecordingHook{id: 1, order: &order})
	p.Register(&orderRecordingHook{id: 2, order: &order})

	p.Unregister(id)
	require.Equal(t, 1, p.Len())

	p.beforeSendBatch(1, DeliveryUnreliable)
	assert.Equal(t, []int{2}, order)
}
