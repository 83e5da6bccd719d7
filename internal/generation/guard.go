package generation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/insight-journal/internal/types"
	"golang.org/x/sync/semaphore"
)

// SlotState is the lifecycle position of a generation slot.
type SlotState string

// Slot states. A slot moves idle -> in_flight -> populated | failed and may be retried from either end state.
const (
	StateIdle      SlotState = "idle"
	StateInFlight  SlotState = "in_flight"
	StatePopulated SlotState = "populated"
	StateFailed    SlotState = "failed"
)

// Newsletter slots.
const (
	SlotNewsletterResearch = "newsletter:research"
	SlotNewsletterCurated  = "newsletter:curated"
)

// InsightSlot names the automated-insight slot of a pillar.
func InsightSlot(id types.PillarID) string { return "insight:" + string(id) }

// NarrativeSlot names the narrative-refinement slot of a pillar.
func NarrativeSlot(id types.PillarID) string { return "narrative:" + string(id) }

// SlotStatus is a snapshot of one slot.
type SlotStatus struct {
	Slot      string    `json:"slot"`
	State     SlotState `json:"state"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

type slot struct {
	sem    *semaphore.Weighted
	status SlotStatus
}

// Guard allows at most one outstanding request per slot.
type Guard struct {
	mu    sync.Mutex
	slots map[string]*slot
	now   func() time.Time
}

// NewGuard returns a Guard with every slot idle.
func NewGuard() *Guard {
	return &Guard{slots: make(map[string]*slot), now: time.Now}
}

func (g *Guard) get(name string) *slot {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.slots[name]
	if !ok {
		s = &slot{
			sem:    semaphore.NewWeighted(1),
			status: SlotStatus{Slot: name, State: StateIdle},
		}
		g.slots[name] = s
	}
	return s
}

func (g *Guard) set(s *slot, state SlotState, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s.status.State = state
	s.status.Error = ""
	if err != nil {
		s.status.Error = err.Error()
	}
	s.status.UpdatedAt = g.now()
}

// Run executes fn while holding the slot. If the slot is busy it returns
// ErrInFlight immediately without calling fn.
func (g *Guard) Run(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	s := g.get(name)
	if !s.sem.TryAcquire(1) {
		return ErrInFlight
	}
	defer s.sem.Release(1)

	g.set(s, StateInFlight, nil)
	err := fn(ctx)
	if err != nil {
		g.set(s, StateFailed, err)
		return err
	}
	g.set(s, StatePopulated, nil)
	return nil
}

// State returns the status of a slot. Unknown slots are idle.
func (g *Guard) State(name string) SlotStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	if s, ok := g.slots[name]; ok {
		return s.status
	}
	return SlotStatus{Slot: name, State: StateIdle}
}

// States returns all slots that have been used, sorted by name.
func (g *Guard) States() []SlotStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]SlotStatus, 0, len(g.slots))
	for _, s := range g.slots {
		out = append(out, s.status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
