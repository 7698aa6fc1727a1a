package agent

import "sync"

// userIndex is the agent's view of provisionable users. The sync loops
// replace it wholesale; the traffic reporter reads it to map Xray stat
// emails back to account IDs.
type userIndex struct {
	mu      sync.RWMutex
	byEmail map[string]NodeUser
	users   []NodeUser
}

func newUserIndex() *userIndex {
	return &userIndex{byEmail: make(map[string]NodeUser)}
}

// eligible reports whether the user should be provisioned on the node.
// Users with exhausted quota are excluded until the next billing event.
func eligible(u NodeUser) bool {
	return u.TrafficUsed < u.TrafficQuota
}

// Replace swaps in a fresh user set and reports whether the eligible
// set changed since the previous sync.
func (idx *userIndex) Replace(users []NodeUser) bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	previous := make(map[string]struct{}, len(idx.users))
	for _, u := range idx.users {
		if eligible(u) {
			previous[u.Email] = struct{}{}
		}
	}

	idx.users = users
	idx.byEmail = make(map[string]NodeUser, len(users))

	changed := false
	current := 0
	for _, u := range users {
		idx.byEmail[u.Email] = u
		if !eligible(u) {
			continue
		}
		current++
		if _, ok := previous[u.Email]; !ok {
			changed = true
		}
	}
	return changed || current != len(previous)
}

// IDByEmail resolves a stat email to the account ID.
func (idx *userIndex) IDByEmail(email string) (uint, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	u, ok := idx.byEmail[email]
	return u.UserID, ok
}

// Eligible returns the users that should currently be provisioned.
func (idx *userIndex) Eligible() []NodeUser {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]NodeUser, 0, len(idx.users))
	for _, u := range idx.users {
		if eligible(u) {
			out = append(out, u)
		}
	}
	return out
}
