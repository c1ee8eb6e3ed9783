package domain

// KeyPrefix namespaces every Redis key the service writes.
// Overridden from config at startup, before any repository is constructed.
var KeyPrefix = "claimsight:"

// SetKeyPrefix replaces the global key prefix. Not safe for concurrent use;
// call once during bootstrap.
func SetKeyPrefix(p string) {
	if p != "" {
		KeyPrefix = p
	}
}
