package customers

import "sync"

// Ticket identifies one request in a sequence of superseding requests.
type Ticket uint64

// Sequencer orders superseding requests, such as searches issued while the
// user types. Only the response to the most recent ticket is accepted.
type Sequencer struct {
	mu     sync.Mutex
	latest Ticket
}

// Next issues a ticket that supersedes every earlier one.
func (s *Sequencer) Next() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	return s.latest
}

// IsLatest reports whether t has not been superseded.
func (s *Sequencer) IsLatest(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return t == s.latest
}

// Accept runs apply if t is still the latest ticket and reports whether it
// did. apply runs under the sequencer's lock, so no newer ticket can be
// issued while it runs.
func (s *Sequencer) Accept(t Ticket, apply func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t != s.latest {
		return false
	}
	apply()
	return true
}
