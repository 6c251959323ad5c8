package signals

type scanState int

const (
	// flat: no open position, waiting for an entry
	flat scanState = iota
	// armed: an entry fired and no covering exit was found yet
	armed
	// draining: the first exit fired but OnlyFirst is off, so later breaches
	// of the same episode are still marked until the next entry re-arms
	draining
)

// scan walks one (parameter, column) pair forward in time and returns the
// exit indices in increasing order. Entries seen while armed are ignored, an
// entry at the exit index itself cannot re-arm, and an episode with no breach
// before the end of history stays open without an exit.
func scan(entries []bool, pred exitPredicate, onlyFirst bool) []int {
	var exits []int
	state := flat
	for t, entry := range entries {
		switch state {
		case flat:
			if entry {
				pred.arm(t)
				state = armed
			}
		case armed:
			if pred.breached(t) {
				exits = append(exits, t)
				state = flat
				if !onlyFirst {
					state = draining
				}
			}
		case draining:
			if entry {
				pred.arm(t)
				state = armed
				continue
			}
			if pred.breached(t) {
				exits = append(exits, t)
			}
		}
	}
	return exits
}
