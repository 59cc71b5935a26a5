package pushbridge

import "context"

// RegistrationEvent carries the registration identifier issued by the native
// push subsystem.
type RegistrationEvent struct {
	RegistrationID string
}

// PluginHandle is an initialized native push plugin. Subscriptions return an
// unsubscribe func.
//
// Registration runs asynchronously from Init, so OnRegistration and OnError
// must replay an already completed outcome to a newly attached fn. The
// coordinator relies on the replay to resolve repeat Register calls from the
// existing handle.
type PluginHandle interface {
	OnRegistration(fn func(RegistrationEvent)) (unsubscribe func())
	OnNotification(fn func(payload map[string]any)) (unsubscribe func())
	OnError(fn func(err error)) (unsubscribe func())

	// Unregister detaches this device from the native push subsystem.
	Unregister(ctx context.Context) error
}

// PluginConfig is the merged plugin initialization configuration. The
// platform-specific keys are injected at coordinator construction.
type PluginConfig struct {
	Android AndroidPluginConfig
	IOS     IOSPluginConfig
}

// AndroidPluginConfig configures FCM-style registration.
type AndroidPluginConfig struct {
	SenderID string
}

// IOSPluginConfig configures APNS notification presentation.
type IOSPluginConfig struct {
	Badge bool
	Sound bool
	Alert bool
}

// Plugin initializes a platform push subsystem and yields a handle for its
// events.
type Plugin interface {
	Init(cfg PluginConfig) (PluginHandle, error)
}

// PluginProvider resolves the native push plugin from the runtime bridge.
// Resolution is lazy so registration can be attempted before the bridge has
// exposed the plugin.
type PluginProvider interface {
	Lookup() (Plugin, bool)
}

// PluginProviderFunc adapts a func to PluginProvider.
type PluginProviderFunc func() (Plugin, bool)

// Lookup calls f.
func (f PluginProviderFunc) Lookup() (Plugin, bool) { return f() }

// StaticPluginProvider returns a provider that always resolves p.
func StaticPluginProvider(p Plugin) PluginProvider {
	return PluginProviderFunc(func() (Plugin, bool) { return p, p != nil })
}
