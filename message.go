package pushbridge

// PushMessage is the canonical shape of a push notification, normalized from
// the heterogeneous payloads the platform plugins deliver.
type PushMessage struct {
	// Title is the notification title, or "" when the payload carries none.
	Title string

	// Message is the notification body, or "" when the payload carries none.
	Message string

	// Payload is the full original payload, including custom data keys.
	Payload map[string]any

	// Raw is the unmodified source object, kept for debugging.
	Raw any
}

// bodyKeys are the known body field names across the platform plugins:
// Android delivers "message", iOS delivers "alert", some bridges use "body".
var bodyKeys = []string{"message", "alert", "body"}

// MessageFromPluginData normalizes a native plugin notification payload.
// Missing fields degrade to empty strings; the transform never fails.
func MessageFromPluginData(payload map[string]any) PushMessage {
	return PushMessage{
		Title:   stringField(payload, "title"),
		Message: stringField(payload, bodyKeys...),
		Payload: payload,
		Raw:     payload,
	}
}

// stringField returns the first present string value among keys.
func stringField(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
