package pushbridge

import (
	evbus "github.com/asaskevich/EventBus"
)

// Bus event names used by the coordinator.
const (
	// EventDeviceReady signals that the native runtime bridge has finished
	// initializing. Emitted by the host, consumed one-shot per Register call.
	EventDeviceReady = "device:ready"

	// EventRegister carries a PushToken after the plugin registration event.
	EventRegister = "push:register"

	// EventNotification carries a normalized PushMessage.
	EventNotification = "push:notification"

	// EventError carries an error reported by the native plugin.
	EventError = "push:error"
)

// Handler receives an event payload.
type Handler func(payload any)

// Bus is the pub/sub contract the coordinator consumes and emits on.
// Subscriptions return an unsubscribe func; Once fires at most once and then
// auto-unsubscribes.
type Bus interface {
	On(event string, fn Handler) (unsubscribe func())
	Once(event string, fn Handler) (unsubscribe func())
	Emit(event string, payload any)
}

// MemoryBus is an in-process Bus. Emit delivers synchronously to all
// subscribers of the event.
type MemoryBus struct {
	bus evbus.Bus
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{bus: evbus.New()}
}

// On subscribes fn to event until the returned func is called.
func (b *MemoryBus) On(event string, fn Handler) func() {
	h := func(payload any) { fn(payload) }
	_ = b.bus.Subscribe(event, h)
	return func() { _ = b.bus.Unsubscribe(event, h) }
}

// Once subscribes fn to event for at most one delivery. The returned func
// cancels the subscription if it has not fired yet.
func (b *MemoryBus) Once(event string, fn Handler) func() {
	h := func(payload any) { fn(payload) }
	_ = b.bus.SubscribeOnce(event, h)
	return func() { _ = b.bus.Unsubscribe(event, h) }
}

// Emit publishes payload to all current subscribers of event.
func (b *MemoryBus) Emit(event string, payload any) {
	b.bus.Publish(event, payload)
}

// HasSubscriber reports whether any handler is subscribed to event. Hosts use
// it to emit device readiness only once the coordinator is listening.
func (b *MemoryBus) HasSubscriber(event string) bool {
	return b.bus.HasCallback(event)
}
