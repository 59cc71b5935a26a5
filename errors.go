package pushbridge

import (
	"errors"
	"fmt"
)

// Single-flight rejections. A same-category operation is already in flight;
// the caller may retry once it completes. Excess calls are never queued.
var (
	ErrRegistrationInProgress = errors.New("pushbridge: registration already in progress")
	ErrSaveInProgress         = errors.New("pushbridge: save operation already in progress")
	ErrUnregisterInProgress   = errors.New("pushbridge: unregister already in progress")
)

// ErrPushDisabled is returned by Register when the coordinator was
// constructed without the sender id required on Android. The condition is
// logged at construction and the coordinator stays inert for registration.
var ErrPushDisabled = errors.New("pushbridge: push registration disabled: sender_id missing from configuration")

// PluginUnavailableError indicates the native push plugin could not be
// resolved from the runtime bridge. Fatal for that registration attempt.
type PluginUnavailableError struct {
	Platform Platform
}

func (e *PluginUnavailableError) Error() string {
	switch {
	case e.Platform.IsAndroid():
		return "pushbridge: native push plugin not found: verify the bridge bundles the push plugin and Google Play services is available"
	case e.Platform.IsIOS():
		return "pushbridge: native push plugin not found: verify the bridge bundles the push plugin and notification entitlements are configured"
	default:
		return "pushbridge: native push plugin not found"
	}
}

// APIError represents an HTTP error from the push token service.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
	Method     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}
