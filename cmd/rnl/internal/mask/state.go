package mask

import (
	"sync"
	"sync/atomic"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// State holds the active redaction policy. Readers load the current Engine
// without locking; Initialize and Reset build a new one and swap it in.
type State struct {
	mu     sync.Mutex
	base   Policy
	lookup LookupFunc
	policy Policy
	engine atomic.Pointer[Engine]
}

// NewState starts from base and applies the variables served by lookup.
// A nil lookup reads the process environment.
func NewState(base Policy, lookup LookupFunc) *State {
	if lookup == nil {
		lookup = EnvLookup
	}
	s := &State{base: base.clone(), lookup: lookup, policy: base.clone()}
	s.Initialize()
	return s
}

// Initialize re-reads the default-mask switch and the custom field list.
// The list replaces the current custom fields only when it is set and
// non-empty.
func (s *State) Initialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initializeLocked()
}

func (s *State) initializeLocked() {
	p := s.policy.clone()

	raw, _ := s.lookup(constants.EnvDefaultMask)
	p.EnableDefaultMask = ParseEnabled(raw)
	if raw, ok := s.lookup(constants.EnvMaskFields); ok && raw != "" {
		p.CustomFields = ParseFields(raw)
	}

	s.policy = p
	s.engine.Store(NewEngine(p))
}

// Reset restores default masking with no custom fields, then re-reads the
// environment.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.base.clone()
	p.EnableDefaultMask = true
	p.CustomFields = nil
	s.policy = p
	s.initializeLocked()
}

func (s *State) Engine() *Engine { return s.engine.Load() }

func (s *State) Policy() Policy { return s.Engine().Policy() }

func (s *State) IsSensitive(field string) bool { return s.Engine().IsSensitive(field) }

func (s *State) MaskAny(x any) (Value, error) { return s.Engine().MaskAny(x) }

var defaultState = NewState(DefaultPolicy(), EnvLookup)

// Default returns the process-wide state, initialized from the environment.
func Default() *State { return defaultState }

// Initialize re-reads the environment into the process-wide state.
func Initialize() { defaultState.Initialize() }

// Reset restores the process-wide state to its baseline.
func Reset() { defaultState.Reset() }

// Mask converts and masks x with the process-wide state.
func Mask(x any) (Value, error) { return defaultState.MaskAny(x) }
