package identity

import (
	"errors"

	"github.com/keygate/keygate/internal/types"
)

// ErrMissingSharedKey aborts a run before any network activity: the shared
// key is the one mandatory credential.
var ErrMissingSharedKey = errors.New("shared key is required (set --key or KEYGATE_SHARED_KEY)")

// Context is one resolved credential profile: the exact headers a probe
// request sends. Available is false only for an unsupplied user token, in
// which case every probe under that tier degrades to not_applicable.
type Context struct {
	Tier      types.IdentityTier
	Headers   map[string]string
	Available bool
}

// Set holds the three fixed contexts for a run. Construct once, read-only
// afterwards; Resolve is the single dispatch point for tier handling.
type Set struct {
	contexts map[types.IdentityTier]Context
}

// NewSet builds the three contexts from credential material. The shared key
// is mandatory; the user token may be empty and merely narrows what can run.
func NewSet(sharedKey, userToken string) (*Set, error) {
	if sharedKey == "" {
		return nil, ErrMissingSharedKey
	}
	s := &Set{contexts: map[types.IdentityTier]Context{
		types.TierNoAuth: {
			Tier:      types.TierNoAuth,
			Headers:   map[string]string{},
			Available: true,
		},
		types.TierSharedKey: {
			Tier: types.TierSharedKey,
			Headers: map[string]string{
				"apikey":        sharedKey,
				"Authorization": "Bearer " + sharedKey,
			},
			Available: true,
		},
	}}
	user := Context{Tier: types.TierUserToken}
	if userToken != "" {
		user.Available = true
		user.Headers = map[string]string{
			"apikey":        sharedKey,
			"Authorization": "Bearer " + userToken,
		}
	}
	s.contexts[types.TierUserToken] = user
	return s, nil
}

// Resolve returns the context for a tier. Unknown tiers resolve to an
// unavailable context rather than panicking; callers treat that exactly like
// a missing user token.
func (s *Set) Resolve(tier types.IdentityTier) Context {
	if c, ok := s.contexts[tier]; ok {
		return c
	}
	return Context{Tier: tier}
}
