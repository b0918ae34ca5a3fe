package cockpit

import "strings"

// layer is one precedence tier; set distinguishes "absent" from a zero value.
type layer[T any] struct {
	value T
	set   bool
}

func present[T any](value T) layer[T] {
	return layer[T]{value: value, set: true}
}

func lookup[K comparable, V any](values map[K]V, key K) layer[V] {
	v, ok := values[key]
	return layer[V]{value: v, set: ok}
}

// resolveLayered picks the user value, then the admin value, then builtin,
// skipping tiers that are absent or rejected by valid.
func resolveLayered[T any](user, admin layer[T], builtin T, valid func(T) bool) T {
	if user.set && valid(user.value) {
		return user.value
	}
	if admin.set && valid(admin.value) {
		return admin.value
	}
	return builtin
}

func positiveSpan(v int) bool {
	return v > 0
}

func explicitHeight(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "auto"
}
