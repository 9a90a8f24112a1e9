package scanner

// LinkSet is an ordered set of absolute URLs. Membership and first-seen order
// are preserved across all listing pages of a crawl run. Scan results are
// merged in page-number order by a single goroutine, so no locking is needed.
type LinkSet struct {
	seen  map[string]struct{}
	order []string
}

// NewLinkSet returns an empty set.
func NewLinkSet() *LinkSet {
	return &LinkSet{seen: make(map[string]struct{})}
}

// Add inserts a URL, reporting whether it was newly seen.
func (s *LinkSet) Add(u string) bool {
	if _, ok := s.seen[u]; ok {
		return false
	}
	s.seen[u] = struct{}{}
	s.order = append(s.order, u)
	return true
}

// AddAll inserts every URL in order.
func (s *LinkSet) AddAll(urls []string) {
	for _, u := range urls {
		s.Add(u)
	}
}

// Contains reports membership.
func (s *LinkSet) Contains(u string) bool {
	_, ok := s.seen[u]
	return ok
}

// URLs returns the unique URLs in first-seen order.
func (s *LinkSet) URLs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of unique URLs.
func (s *LinkSet) Len() int {
	return len(s.order)
}
