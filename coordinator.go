package pushbridge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// CoordinatorOption configures Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithSession attaches an authentication session and user service. When the
// session reports authenticated, SaveToken attaches the current user id to
// the outgoing record unless told otherwise.
func WithSession(session AuthSession, users UserService) CoordinatorOption {
	return func(c *Coordinator) {
		c.session = session
		c.users = users
	}
}

// SaveOptions controls SaveToken behavior.
type SaveOptions struct {
	// IgnoreUser omits the authenticated user id from the outgoing record
	// even when a session is authenticated.
	IgnoreUser bool
}

// Coordinator drives device push registration: it waits for the runtime
// bridge to become ready, initializes the native push plugin, persists the
// issued token and synchronizes it with the remote token service.
//
// Each operation category (register, save, unregister) admits one in-flight
// call at a time; excess calls are rejected, never queued. An admitted
// operation runs until it completes: there is no internal timeout, so a
// device-ready signal that never fires or a hung remote call holds the
// category closed until the caller cancels its context.
type Coordinator struct {
	cfg       *Config
	bus       Bus
	store     TokenStore
	api       TokenAPI
	plugins   PluginProvider
	device    DeviceInfo
	session   AuthSession
	users     UserService
	logger    *slog.Logger
	pluginCfg PluginConfig

	mu            sync.Mutex
	registering   bool
	saving        bool
	unregistering bool
	token         *PushToken // write-through cache, lazily loaded
	handle        PluginHandle
	subscribed    bool // permanent plugin subscriptions registered
	disabled      bool // constructed without the required sender id
}

// NewCoordinator assembles a coordinator. The sender id from configuration is
// merged into the Android plugin sub-config here; a missing sender id on an
// Android device is logged and leaves the coordinator inert for registration,
// but construction always succeeds.
func NewCoordinator(
	cfg *Config,
	bus Bus,
	store TokenStore,
	api TokenAPI,
	plugins PluginProvider,
	device DeviceInfo,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		cfg:     cfg,
		bus:     bus,
		store:   store,
		api:     api,
		plugins: plugins,
		device:  device,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.pluginCfg = PluginConfig{
		IOS: IOSPluginConfig{Badge: true, Sound: true, Alert: true},
	}
	senderID := cfg.GetString(SettingSenderID)
	if device.IsAndroid() {
		if senderID == "" {
			c.disabled = true
			c.logger.Error("sender_id missing from configuration; push registration disabled")
		}
		c.pluginCfg.Android.SenderID = senderID
	}

	return c
}

// Register waits for the device-ready signal, initializes the native push
// plugin and resolves with the token issued by its registration event. The
// token is marked registered and written through to the store.
//
// A second call while one is in flight returns ErrRegistrationInProgress
// without touching coordinator state. Cancelling ctx releases the in-flight
// slot and returns ctx.Err().
func (c *Coordinator) Register(ctx context.Context) (PushToken, error) {
	c.mu.Lock()
	if c.disabled {
		c.mu.Unlock()
		return PushToken{}, ErrPushDisabled
	}
	if c.registering {
		c.mu.Unlock()
		return PushToken{}, ErrRegistrationInProgress
	}
	c.registering = true
	c.mu.Unlock()

	c.logger.Debug("waiting for device ready signal")
	ready := make(chan struct{}, 1)
	cancelReady := c.bus.Once(EventDeviceReady, func(any) {
		select {
		case ready <- struct{}{}:
		default:
		}
	})

	select {
	case <-ready:
	case <-ctx.Done():
		cancelReady()
		c.release(&c.registering)
		return PushToken{}, ctx.Err()
	}

	plugin, ok := c.plugins.Lookup()
	if !ok {
		err := &PluginUnavailableError{Platform: c.platform()}
		c.logger.Error("native push plugin not found", "platform", string(c.platform()))
		c.release(&c.registering)
		return PushToken{}, err
	}

	// Subscribe for this call's resolution before initializing the plugin so
	// the registration event cannot be missed. The permanent handler also
	// persists the token; both writes carry the same value, so the double
	// write is harmless.
	registered := make(chan PushToken, 1)
	offer := func(tok PushToken) {
		select {
		case registered <- tok:
		default:
		}
	}
	cancelRegistered := c.bus.Once(EventRegister, func(payload any) {
		if tok, ok := payload.(PushToken); ok {
			offer(tok)
		}
	})

	handle, err := c.initPlugin(plugin)
	if err != nil {
		cancelRegistered()
		c.release(&c.registering)
		return PushToken{}, err
	}

	// Repeat calls reuse the already initialized plugin, which fires its
	// registration event only once. The handle replays a completed
	// registration to new subscribers, so a per-call subscription resolves
	// those calls.
	cancelReplay := handle.OnRegistration(func(ev RegistrationEvent) {
		offer(PushToken{Token: ev.RegistrationID, Registered: true})
	})

	select {
	case tok := <-registered:
		cancelReplay()
		cancelRegistered()
		c.release(&c.registering)
		c.setToken(tok)
		c.logger.Info("push registration complete", "token_prefix", truncate(tok.Token, 20))
		return tok, nil
	case <-ctx.Done():
		cancelReplay()
		cancelRegistered()
		c.release(&c.registering)
		return PushToken{}, ctx.Err()
	}
}

// SaveToken synchronizes tok with the remote token service and returns a copy
// marked saved. The record carries the configured app id and, unless
// opts.IgnoreUser is set, the current user id when the session is
// authenticated.
//
// A second call while one is in flight returns ErrSaveInProgress and leaves
// the in-flight call undisturbed.
func (c *Coordinator) SaveToken(ctx context.Context, tok PushToken, opts SaveOptions) (PushToken, error) {
	c.mu.Lock()
	if c.saving {
		c.mu.Unlock()
		return PushToken{}, ErrSaveInProgress
	}
	c.saving = true
	c.mu.Unlock()

	rec := TokenRecord{
		Token: tok.Token,
		AppID: c.cfg.GetString(SettingAppID),
	}
	if !opts.IgnoreUser && c.session != nil && c.session.IsAuthenticated() && c.users != nil {
		rec.UserID = c.users.Current().ID
	}

	err := c.api.CreateToken(ctx, rec)
	c.release(&c.saving)
	if err != nil {
		c.logger.Error("saving push token failed", "error", err)
		c.logger.Debug("save token request", "token_prefix", truncate(rec.Token, 20), "app_id", rec.AppID, "user_id", rec.UserID)
		return PushToken{}, fmt.Errorf("saving push token: %w", err)
	}

	tok.Saved = true
	return tok, nil
}

// Unregister detaches this device: it fires a best-effort native plugin
// unregister (outcome ignored), invalidates the token on the remote service
// and clears the cached and persisted record. With no current token it
// resolves immediately and issues no remote call. On a remote failure the
// token is left intact so the caller may retry.
func (c *Coordinator) Unregister(ctx context.Context) error {
	c.mu.Lock()
	if c.unregistering {
		c.mu.Unlock()
		return ErrUnregisterInProgress
	}
	c.unregistering = true
	handle := c.handle
	c.mu.Unlock()
	defer c.release(&c.unregistering)

	tok := c.Token(ctx)
	if tok.IsZero() {
		return nil
	}

	if handle != nil {
		// Best-effort native unregister; the outcome is deliberately ignored.
		go func() { _ = handle.Unregister(context.Background()) }()
	}

	rec := TokenRecord{
		Token: tok.Token,
		AppID: c.cfg.GetString(SettingAppID),
	}
	if err := c.api.InvalidateToken(ctx, rec); err != nil {
		c.logger.Error("invalidating push token failed", "error", err)
		return fmt.Errorf("invalidating push token: %w", err)
	}

	c.mu.Lock()
	c.token = nil
	c.mu.Unlock()
	if err := c.store.Delete(ctx, tokenStoreKey); err != nil {
		c.logger.Error("deleting persisted push token", "error", err)
	}
	c.logger.Info("push token unregistered", "token_prefix", truncate(tok.Token, 20))
	return nil
}

// Token returns the current push token. It is loaded lazily from the store on
// first read; an absent record yields the zero token.
func (c *Coordinator) Token(ctx context.Context) PushToken {
	c.mu.Lock()
	if c.token != nil {
		tok := *c.token
		c.mu.Unlock()
		return tok
	}
	c.mu.Unlock()

	rec, err := c.store.Get(ctx, tokenStoreKey)
	if err != nil {
		c.logger.Error("loading persisted push token", "error", err)
		return PushToken{}
	}

	tok := PushToken{}
	if rec != nil {
		tok = PushToken{Token: rec.Token}
	}
	c.mu.Lock()
	c.token = &tok
	c.mu.Unlock()
	return tok
}

// initPlugin initializes the plugin and registers the permanent
// registration/notification/error subscriptions. Both happen at most once per
// coordinator lifetime; later calls get the existing handle back.
func (c *Coordinator) initPlugin(plugin Plugin) (PluginHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.subscribed {
		return c.handle, nil
	}

	handle, err := plugin.Init(c.pluginCfg)
	if err != nil {
		return nil, fmt.Errorf("initializing push plugin: %w", err)
	}
	handle.OnRegistration(c.handleRegistration)
	handle.OnNotification(c.handleNotification)
	handle.OnError(c.handlePluginError)

	c.handle = handle
	c.subscribed = true
	return handle, nil
}

// handleRegistration is the permanent plugin registration subscription: it
// persists the issued token and republishes it on the bus.
func (c *Coordinator) handleRegistration(ev RegistrationEvent) {
	tok := PushToken{Token: ev.RegistrationID, Registered: true}
	c.setToken(tok)
	c.bus.Emit(EventRegister, tok)
}

func (c *Coordinator) handleNotification(payload map[string]any) {
	msg := MessageFromPluginData(payload)
	c.logger.Debug("push notification received", "title", msg.Title)
	c.bus.Emit(EventNotification, msg)
}

func (c *Coordinator) handlePluginError(err error) {
	c.logger.Error("native push plugin error", "error", err)
	c.bus.Emit(EventError, err)
}

// setToken updates the cache and writes through to the store.
func (c *Coordinator) setToken(tok PushToken) {
	c.mu.Lock()
	c.token = &tok
	c.mu.Unlock()

	if err := c.store.Set(context.Background(), tokenStoreKey, StoredToken{Token: tok.Token}); err != nil {
		c.logger.Error("persisting push token", "error", err)
	}
}

func (c *Coordinator) release(flag *bool) {
	c.mu.Lock()
	*flag = false
	c.mu.Unlock()
}

func (c *Coordinator) platform() Platform {
	switch {
	case c.device.IsAndroid():
		return PlatformAndroid
	case c.device.IsIOS():
		return PlatformIOS
	default:
		return PlatformUnknown
	}
}
