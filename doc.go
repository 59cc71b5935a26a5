// Package pushbridge coordinates device-side push notification registration
// for hybrid-app runtime bridges.
//
// It acquires a device push token from a native push plugin, persists it in a
// token store, synchronizes it with a remote token service over HTTP, and
// guarantees that at most one register, save or unregister operation is in
// flight at a time.
//
// The fcm subpackage provides a Plugin implementation backed by Google's
// GCM/FCM registration endpoints.
//
// Usage:
//
//	coord := pushbridge.NewCoordinator(cfg, bus, store, client, provider, pushbridge.PlatformAndroid)
//	bus.Emit(pushbridge.EventDeviceReady, nil)
//	token, err := coord.Register(ctx)
//	token, err = coord.SaveToken(ctx, token, pushbridge.SaveOptions{})
package pushbridge
