package pictures

import (
	"sync"

	"github.com/google/uuid"
)

// parentLocks serializes position assignment per parent computer, so two
// concurrent uploads (or uploads racing a reorder) cannot read the same
// max(position). Entries are never evicted; the map is bounded by the number
// of computers touched by this process.
type parentLocks struct {
	locks sync.Map // uuid.UUID -> *sync.Mutex
}

func (p *parentLocks) lock(computerID uuid.UUID) func() {
	value, _ := p.locks.LoadOrStore(computerID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
