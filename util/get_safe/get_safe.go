package getsafe

// Value returns payload[key] when it holds a T and T's zero value otherwise.
func Value[T any](payload map[string]any, key string) T {
	v, _ := payload[key].(T)
	return v
}

func String(payload map[string]any, key string) string {
	return Value[string](payload, key)
}

// Metadata reads a nested json object such as a qdrant payload field.
func Metadata(payload map[string]any, key string) map[string]any {
	return Value[map[string]any](payload, key)
}
