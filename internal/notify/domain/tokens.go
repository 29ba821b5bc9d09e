package domain

// MaxDeviceTokens bounds how many push endpoints a single user may register.
const MaxDeviceTokens = 5

// DeviceTokenList is an ordered list of opaque push tokens, oldest first.
// Its methods carry the registry semantics: duplicate adds are no-ops and
// insertion at capacity evicts the oldest token before appending.
type DeviceTokenList []string

func (l DeviceTokenList) Contains(token string) bool {
	for _, t := range l {
		if t == token {
			return true
		}
	}
	return false
}

// Append returns the list with token added. Already-present tokens leave the
// list unchanged; at capacity the oldest entry is dropped first.
func (l DeviceTokenList) Append(token string) DeviceTokenList {
	if l.Contains(token) {
		return l
	}
	if len(l) >= MaxDeviceTokens {
		l = l[len(l)-MaxDeviceTokens+1:]
	}
	out := make(DeviceTokenList, 0, len(l)+1)
	out = append(out, l...)
	return append(out, token)
}

// Without returns the list minus the given tokens, preserving the order of
// the survivors.
func (l DeviceTokenList) Without(tokens ...string) DeviceTokenList {
	drop := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		drop[t] = struct{}{}
	}
	out := make(DeviceTokenList, 0, len(l))
	for _, t := range l {
		if _, ok := drop[t]; !ok {
			out = append(out, t)
		}
	}
	return out
}
