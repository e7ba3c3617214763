package engine

import "errors"

// ErrInsufficientItems indicates the available items cannot fill a pool of
// the requested size for every participant.
var ErrInsufficientItems = errors.New("not enough items to fill every pool")

// AllocatePools shuffles the available items uniformly and slices them into
// participants contiguous disjoint groups of exactly poolSize, in participant
// order. Leftover items beyond participants*poolSize are simply unassigned.
func (e *Engine) AllocatePools(items []string, participants, poolSize int) ([][]string, error) {
	needed := participants * poolSize
	if len(items) < needed {
		return nil, ErrInsufficientItems
	}

	shuffled := append([]string(nil), items...)
	e.shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	pools := make([][]string, participants)
	for i := 0; i < participants; i++ {
		start := i * poolSize
		pools[i] = shuffled[start : start+poolSize]
	}
	return pools, nil
}
