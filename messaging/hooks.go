package messaging

import "github.com/google/uuid"

// Hook observes the eight messaging lifecycle points and may veto traffic
// in either direction via CanSend/CanReceive. Hooks must not panic: a
// panic escaping a hook callback propagates to the caller of the
// triggering Core method, since hooks are in the trusted boundary (only
// application message handlers are sandboxed against panics).
type Hook interface {
	OnBeforeReceiveBatch(peerID uint64, count int, totalLen int)
	OnAfterReceiveBatch(peerID uint64, count int, totalLen int)
	OnBeforeReceiveMessage(ctx *NetworkContext)
	OnAfterReceiveMessage(ctx *NetworkContext)
	OnBeforeSendMessage(peerID uint64, tag MessageTag, delivery DeliveryClass)
	OnAfterSendMessage(peerID uint64, tag MessageTag, delivery DeliveryClass, totalBytes int)
	OnBeforeSendBatch(peerID uint64, delivery DeliveryClass)
	OnAfterSendBatch(peerID uint64, delivery DeliveryClass)

	// CanSend vetoes an outbound message for one peer. Returning false
	// skips that peer silently; no error is surfaced.
	CanSend(peerID uint64, tag MessageTag, delivery DeliveryClass) bool

	// CanReceive vetoes dispatch of an inbound message. Returning false
	// releases the owning reader and skips the handler silently.
	CanReceive(peerID uint64, tag MessageTag) bool
}

// BaseHook implements every Hook method as a no-op / permissive veto, so
// observers that only care about a handful of lifecycle points can embed
// BaseHook and override just those methods.
type BaseHook struct{}

func (BaseHook) OnBeforeReceiveBatch(peerID uint64, count int, totalLen int)  {}
func (BaseHook) OnAfterReceiveBatch(peerID uint64, count int, totalLen int)   {}
func (BaseHook) OnBeforeReceiveMessage(ctx *NetworkContext)                   {}
func (BaseHook) OnAfterReceiveMessage(ctx *NetworkContext)                   {}
func (BaseHook) OnBeforeSendMessage(peerID uint64, tag MessageTag, d DeliveryClass) {}
func (BaseHook) OnAfterSendMessage(peerID uint64, tag MessageTag, d DeliveryClass, totalBytes int) {
}
func (BaseHook) OnBeforeSendBatch(peerID uint64, d DeliveryClass) {}
func (BaseHook) OnAfterSendBatch(peerID uint64, d DeliveryClass)  {}
func (BaseHook) CanSend(peerID uint64, tag MessageTag, d DeliveryClass) bool { return true }
func (BaseHook) CanReceive(peerID uint64, tag MessageTag) bool               { return true }

// HookPipeline is the ordered list of registered Hooks. Hooks fire in
// registration order; the two veto predicates short-circuit on the
// first false.
type HookPipeline struct {
	order []uuid.UUID
	hooks map[uuid.UUID]Hook
}

// NewHookPipeline returns an empty pipeline.
func NewHookPipeline() *HookPipeline {
	return &HookPipeline{hooks: make(map[uuid.UUID]Hook)}
}

// Register appends h to the pipeline and returns a token that can later
// be passed to Unregister.
func (p *HookPipeline) Register(h Hook) uuid.UUID {
	id := uuid.New()
	p.order = append(p.order, id)
	p.hooks[id] = h
	return id
}

// Unregister removes the hook identified by token, if present.
func (p *HookPipeline) Unregister(token uuid.UUID) {
	if _, ok := p.hooks[token]; !ok {
		return
	}
	delete(p.hooks, token)
	for i, id := range p.order {
		if id == token {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of currently registered hooks.
func (p *HookPipeline) Len() int { return len(p.order) }

func (p *HookPipeline) beforeReceiveBatch(peerID uint64, count, totalLen int) {
	for _, id := range p.order {
		p.hooks[id].OnBeforeReceiveBatch(peerID, count, totalLen)
	}
}

func (p *HookPipeline) afterReceiveBatch(peerID uint64, count, totalLen int) {
	for _, id := range p.order {
		p.hooks[id].OnAfterReceiveBatch(peerID, count, totalLen)
	}
}

func (p *HookPipeline) beforeReceiveMessage(ctx *NetworkContext) {
	for _, id := range p.order {
		p.hooks[id].OnBeforeReceiveMessage(ctx)
	}
}

func (p *HookPipeline) afterReceiveMessage(ctx *NetworkContext) {
	for _, id := range p.order {
		p.hooks[id].OnAfterReceiveMessage(ctx)
	}
}

func (p *HookPipeline) beforeSendMessage(peerID uint64, tag MessageTag, d DeliveryClass) {
	for _, id := range p.order {
		p.hooks[id].OnBeforeSendMessage(peerID, tag, d)
	}
}

func (p *HookPipeline) afterSendMessage(peerID uint64, tag MessageTag, d DeliveryClass, totalBytes int) {
	for _, id := range p.order {
		p.hooks[id].OnAfterSendMessage(peerID, tag, d, totalBytes)
	}
}

func (p *HookPipeline) beforeSendBatch(peerID uint64, d DeliveryClass) {
	for _, id := range p.order {
		p.hooks[id].OnBeforeSendBatch(peerID, d)
	}
}

func (p *HookPipeline) afterSendBatch(peerID uint64, d DeliveryClass) {
	for _, id := range p.order {
		p.hooks[id].OnAfterSendBatch(peerID, d)
	}
}

// canSend returns false on the first hook that vetoes, short-circuiting
// the remaining hooks.
func (p *HookPipeline) canSend(peerID uint64, tag MessageTag, d DeliveryClass) bool {
	for _, id := range p.order {
		if !p.hooks[id].CanSend(peerID, tag, d) {
			return false
		}
	}
	return true
}

// canReceive returns false on the first hook that vetoes, short-circuiting
// the remaining hooks.
func (p *HookPipeline) canReceive(peerID uint64, tag MessageTag) bool {
	for _, id := range p.order {
		if !p.hooks[id].CanReceive(peerID, tag) {
			return false
		}
	}
	return true
}
