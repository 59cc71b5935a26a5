package fcm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pushbridge "github.com/pushbridge-dev/pushbridge"
)

// registerURL is a package-level var so tests can override it.
var registerURL = "https://android.clients.google.com/c2dm/register3"

// Credentials holds the Android GCM device identity used to authorize
// registration calls. Provisioning them (device checkin) is outside this
// package; they are supplied via WithCredentials or loaded from the session
// directory.
type Credentials struct {
	AndroidID     uint64 `json:"androidId"`
	SecurityToken uint64 `json:"securityToken"`
}

// Option configures Plugin.
type Option func(*Plugin)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client for registration calls.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Plugin) {
		p.httpClient = client
	}
}

// WithCredentials supplies device credentials directly instead of loading
// them from the session directory. They are persisted on first Init.
func WithCredentials(creds Credentials) Option {
	return func(p *Plugin) {
		c := creds
		p.creds = &c
	}
}

// Plugin is a pushbridge.Plugin backed by Google's GCM/FCM registration
// endpoint.
type Plugin struct {
	sessionDir string
	appPackage string
	logger     *slog.Logger
	httpClient *http.Client

	mu    sync.Mutex
	creds *Credentials
}

var _ pushbridge.Plugin = (*Plugin)(nil)

// New creates a Plugin for the given app package, persisting device
// credentials under sessionDir.
func New(sessionDir, appPackage string, opts ...Option) *Plugin {
	p := &Plugin{
		sessionDir: sessionDir,
		appPackage: appPackage,
		logger:     slog.Default(),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init validates the config, ensures device credentials exist and starts the
// registration flow. The outcome is delivered asynchronously through the
// handle's registration and error subscriptions.
func (p *Plugin) Init(cfg pushbridge.PluginConfig) (pushbridge.PluginHandle, error) {
	senderID := cfg.Android.SenderID
	if senderID == "" {
		return nil, errors.New("fcm: android sender id required")
	}

	p.mu.Lock()
	if p.creds == nil {
		if err := p.loadCredentialsLocked(); err != nil {
			p.mu.Unlock()
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("fcm: no device credentials in %s: provision the device first", p.sessionDir)
			}
			return nil, err
		}
	} else if err := p.saveCredentialsLocked(); err != nil {
		p.logger.Error("Failed to save GCM credentials", "error", err)
	}
	p.mu.Unlock()

	h := newHandle(p)
	go h.register(context.Background(), senderID)
	return h, nil
}

func (p *Plugin) credentials() Credentials {
	p.mu.Lock()
	defer p.mu.Unlock()
	return *p.creds
}

func (p *Plugin) credentialsPath() string {
	return filepath.Join(p.sessionDir, "gcm_credentials.json")
}

func (p *Plugin) loadCredentialsLocked() error {
	data, err := os.ReadFile(p.credentialsPath())
	if err != nil {
		return err
	}
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("parsing GCM credentials: %w", err)
	}
	p.creds = &creds
	return nil
}

func (p *Plugin) saveCredentialsLocked() error {
	if err := os.MkdirAll(p.sessionDir, 0o755); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(p.creds, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing GCM credentials: %w", err)
	}
	if err := os.WriteFile(p.credentialsPath(), data, 0o600); err != nil {
		return fmt.Errorf("writing GCM credentials: %w", err)
	}
	return nil
}

// newInstanceID derives an 11-character instance id, mimicking Android's GCM
// instance id format.
func newInstanceID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:11]
}

// Handle is an initialized plugin instance with callback subscriptions.
type Handle struct {
	plugin *Plugin

	mu       sync.Mutex
	nextID   int
	regFns   map[int]func(pushbridge.RegistrationEvent)
	notifFns map[int]func(map[string]any)
	errFns   map[int]func(error)
	token    string
	regErr   error
}

var _ pushbridge.PluginHandle = (*Handle)(nil)

func newHandle(p *Plugin) *Handle {
	return &Handle{
		plugin:   p,
		regFns:   map[int]func(pushbridge.RegistrationEvent){},
		notifFns: map[int]func(map[string]any){},
		errFns:   map[int]func(error){},
	}
}

// OnRegistration subscribes fn to registration events. Registration starts
// during Init, so a registration that already completed is replayed to fn
// immediately.
func (h *Handle) OnRegistration(fn func(pushbridge.RegistrationEvent)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.regFns[id] = fn
	token := h.token
	h.mu.Unlock()

	if token != "" {
		fn(pushbridge.RegistrationEvent{RegistrationID: token})
	}
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.regFns, id)
	}
}

// OnNotification subscribes fn to notification payloads forwarded by the
// host bridge.
func (h *Handle) OnNotification(fn func(map[string]any)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.notifFns[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.notifFns, id)
	}
}

// OnError subscribes fn to registration errors. A registration failure that
// already happened is replayed to fn immediately.
func (h *Handle) OnError(fn func(error)) func() {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.errFns[id] = fn
	regErr := h.regErr
	h.mu.Unlock()

	if regErr != nil {
		fn(regErr)
	}
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.errFns, id)
	}
}

// Token returns the FCM token issued for this handle, or "" before
// registration completes.
func (h *Handle) Token() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

// HandleNotification forwards a raw notification payload received by the
// host bridge to notification subscribers. The MCS delivery channel itself
// is not part of this package.
func (h *Handle) HandleNotification(payload map[string]any) {
	for _, fn := range h.notifSubscribers() {
		fn(payload)
	}
}

// register performs the GCM register call and fires the registration or
// error callbacks.
func (h *Handle) register(ctx context.Context, senderID string) {
	p := h.plugin
	p.logger.Debug("Starting GCM registration", "sender_id", senderID)

	token, err := p.registerToken(ctx, senderID)
	if err != nil {
		p.logger.Error("GCM registration failed", "error", err)
		h.mu.Lock()
		h.regErr = err
		h.mu.Unlock()
		for _, fn := range h.errSubscribers() {
			fn(err)
		}
		return
	}

	h.mu.Lock()
	h.token = token
	h.mu.Unlock()

	p.logger.Info("GCM registration complete", "token_prefix", truncate(token, 20))
	for _, fn := range h.regSubscribers() {
		fn(pushbridge.RegistrationEvent{RegistrationID: token})
	}
}

// Unregister deletes this device's registration at the GCM endpoint.
func (h *Handle) Unregister(ctx context.Context) error {
	form := url.Values{
		"app":    {h.plugin.appPackage},
		"delete": {"true"},
	}
	body, err := h.plugin.postForm(ctx, form)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(body, "deleted=") && !strings.HasPrefix(body, "token=") {
		return fmt.Errorf("gcm unregister: unexpected response: %s", body)
	}
	h.plugin.logger.Debug("GCM registration deleted")
	return nil
}

func (h *Handle) regSubscribers() []func(pushbridge.RegistrationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := make([]func(pushbridge.RegistrationEvent), 0, len(h.regFns))
	for _, fn := range h.regFns {
		fns = append(fns, fn)
	}
	return fns
}

func (h *Handle) notifSubscribers() []func(map[string]any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := make([]func(map[string]any), 0, len(h.notifFns))
	for _, fn := range h.notifFns {
		fns = append(fns, fn)
	}
	return fns
}

func (h *Handle) errSubscribers() []func(error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fns := make([]func(error), 0, len(h.errFns))
	for _, fn := range h.errFns {
		fns = append(fns, fn)
	}
	return fns
}

// registerToken registers with the GCM c2dm/register3 endpoint and returns
// the issued FCM token.
func (p *Plugin) registerToken(ctx context.Context, senderID string) (string, error) {
	instanceID := newInstanceID()
	creds := p.credentials()

	form := url.Values{
		"app":     {p.appPackage},
		"sender":  {senderID},
		"device":  {strconv.FormatUint(creds.AndroidID, 10)},
		"X-scope": {"GCM"},
		"X-appid": {instanceID},
	}

	body, err := p.postForm(ctx, form)
	if err != nil {
		return "", err
	}

	if token, found := strings.CutPrefix(body, "token="); found {
		token = strings.TrimSpace(token)
		if token == "" {
			return "", errors.New("gcm register: empty token")
		}
		return token, nil
	}
	if reason, found := strings.CutPrefix(body, "Error="); found {
		return "", fmt.Errorf("gcm register: %s", strings.TrimSpace(reason))
	}
	return "", fmt.Errorf("gcm register: unexpected response: %s", body)
}

func (p *Plugin) postForm(ctx context.Context, form url.Values) (string, error) {
	creds := p.credentials()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, registerURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("gcm register: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", fmt.Sprintf("AidLogin %d:%d", creds.AndroidID, creds.SecurityToken))
	req.Header.Set("User-Agent", "Android-GCM/1.5")
	req.Header.Set("app", p.appPackage)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gcm register: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gcm register: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gcm register: HTTP %d: %s", resp.StatusCode, string(respBody))
	}
	return string(respBody), nil
}

// truncate returns the first maxLen characters of s, or s itself if shorter.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
