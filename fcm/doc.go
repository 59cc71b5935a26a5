// Package fcm provides a pushbridge native push plugin backed by Google's
// GCM/FCM registration endpoint.
//
// It implements FCM token acquisition and deletion for a provisioned Android
// device identity. The MCS delivery channel for incoming notifications is not
// part of this package; host bridges forward received payloads through
// Handle.HandleNotification.
//
// Usage:
//
//	plugin := fcm.New(sessionDir, "com.example.app")
//	coord := pushbridge.NewCoordinator(cfg, bus, store, client,
//		pushbridge.StaticPluginProvider(plugin), pushbridge.PlatformAndroid)
package fcm
