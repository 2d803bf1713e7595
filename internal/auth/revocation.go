package auth

import (
	"fmt"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

var revokedMarker = []byte{1}

// RevocationList records logged out token ids until their natural expiry.
// An id present in the list is blocked. Any scs.Store backend can hold the
// entries; the in-memory store is process local.
type RevocationList struct {
	store scs.Store
	stop  func()
}

func NewRevocationList(store scs.Store) *RevocationList {
	return &RevocationList{store: store}
}

// NewMemoryRevocationList keeps entries in process memory, sweeping expired
// ones every cleanup interval.
func NewMemoryRevocationList(cleanup time.Duration) *RevocationList {
	store := memstore.NewWithCleanupInterval(cleanup)
	return &RevocationList{store: store, stop: store.StopCleanup}
}

// Revoke blocks jti until expiry. Tokens already past expiry are rejected by
// signature validation and need no entry.
func (r *RevocationList) Revoke(jti string, expiry time.Time) error {
	if jti == "" {
		return fmt.Errorf("revoke: empty token id")
	}
	if !expiry.After(time.Now()) {
		return nil
	}
	if err := r.store.Commit(jti, revokedMarker, expiry); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RevocationList) IsRevoked(jti string) (bool, error) {
	_, found, err := r.store.Find(jti)
	if err != nil {
		return false, fmt.Errorf("lookup revoked token: %w", err)
	}
	return found, nil
}

// Close stops background cleanup, if any.
func (r *RevocationList) Close() {
	if r.stop != nil {
		r.stop()
	}
}
