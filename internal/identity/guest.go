package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/resumeblast/blastkit/internal/store"
)

// PendingGuestID is the sentinel used when interrupted-workflow breadcrumbs
// prove a guest existed but the id itself was lost. The resume path replaces
// it with the real id from the return URL or the backend record.
const PendingGuestID = "pending_guest"

// GuestEmailDomain forms the synthetic address guests are contacted through.
const GuestEmailDomain = "resumeblast.ai"

// Guest is a locally minted identity for workflows started without an
// account. Guests are never promoted to a Session.
type Guest struct {
	ID         string
	EmailAlias string
}

// NewGuestID mints a fresh guest id from the current wall clock.
func NewGuestID() string {
	return fmt.Sprintf("guest_%d", time.Now().UnixMilli())
}

// EmailAlias derives the synthetic contact address for a guest id.
func EmailAlias(guestID string) string {
	return fmt.Sprintf("%s@%s", guestID, GuestEmailDomain)
}

// ValidGuestID reports whether id has the guest_<timestamp> shape.
func ValidGuestID(id string) bool {
	if !strings.HasPrefix(id, "guest_") {
		return false
	}
	rest := id[len("guest_"):]
	if rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// EnsureGuest returns the persisted guest identity, minting and persisting a
// new one if none exists.
func EnsureGuest(s store.Store) (Guest, error) {
	if id, ok, err := s.Get(store.KeyGuestID); err != nil {
		return Guest{}, err
	} else if ok && id != "" {
		alias, aliasOK, _ := s.Get(store.KeyGuestEmail)
		if !aliasOK || alias == "" {
			alias = EmailAlias(id)
		}
		return Guest{ID: id, EmailAlias: alias}, nil
	}

	g := Guest{ID: NewGuestID()}
	g.EmailAlias = EmailAlias(g.ID)
	if err := s.Set(store.KeyGuestID, g.ID); err != nil {
		return Guest{}, err
	}
	if err := s.Set(store.KeyGuestEmail, g.EmailAlias); err != nil {
		return Guest{}, err
	}
	if err := s.Set(store.KeyIsGuestSession, "true"); err != nil {
		return Guest{}, err
	}
	return g, nil
}

// DetectGuest looks for evidence of a guest session, in precedence order:
// an explicit id from the return URL, the persisted id or flag, and finally
// interrupted-workflow breadcrumbs (which yield the pending sentinel).
// Returns (Guest{}, false) when nothing suggests a guest.
func DetectGuest(s store.Store, urlGuestID string) (Guest, bool) {
	if urlGuestID != "" && ValidGuestID(urlGuestID) {
		return Guest{ID: urlGuestID, EmailAlias: EmailAlias(urlGuestID)}, true
	}

	if id, ok, err := s.Get(store.KeyGuestID); err == nil && ok && id != "" {
		return Guest{ID: id, EmailAlias: EmailAlias(id)}, true
	}
	if flag, ok, err := s.Get(store.KeyIsGuestSession); err == nil && ok && flag == "true" {
		// Flag without an id: a guest existed but the id was lost.
		return Guest{ID: PendingGuestID}, true
	}

	if store.HasPendingBreadcrumbs(s) {
		return Guest{ID: PendingGuestID}, true
	}

	return Guest{}, false
}

// ClearGuest removes the persisted guest identity, called when a registered
// user signs in.
func ClearGuest(s store.Store) error {
	for _, key := range []string{store.KeyGuestID, store.KeyGuestEmail, store.KeyIsGuestSession} {
		if err := s.Delete(key); err != nil {
			return err
		}
	}
	return nil
}
