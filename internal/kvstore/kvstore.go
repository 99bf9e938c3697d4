// Package kvstore provides origin-scoped key-value persistence, the
// equivalent of browser local storage for the gateway. Keys are namespaced
// to avoid collision with unrelated data sharing the same database.
package kvstore

import "context"

// KeyPrefix namespaces every stored key.
const KeyPrefix = "walletgateway:"

// Well-known keys.
const (
	KeyNotifications = "notifications"
	KeyLastWallet    = "last_wallet"
	KeyRemember      = "remember_connection"
)

// Store is a namespaced key-value layer. Get reports presence explicitly so
// callers can distinguish a missing key from an empty value.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
