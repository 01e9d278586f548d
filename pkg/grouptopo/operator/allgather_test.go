package operator_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/jabolina/grouptopo/pkg/grouptopo/operator"
	"github.com/jabolina/grouptopo/pkg/grouptopo/wire"
)

// TestAllGatherFlatStar exercises SPEC_FULL.md E.2: every task in a flat
// root+leaves topology contributes one value and every task ends up
// with the full set, gathered at the root and broadcast back down.
func TestAllGatherFlatStar(t *testing.T) {
	root, leaves, teardown := star(t, 3)
	defer teardown()

	participants := append([]*operator.Topology[int]{root}, leaves...)
	contributed := []int{100, 1, 2, 3}

	results := make([][]int, len(participants))
	var wg sync.WaitGroup
	for i, p := range participants {
		wg.Add(1)
		go func(i int, p *operator.Topology[int]) {
			defer wg.Done()
			got, err := p.AllGather(context.Background(), contributed[i], wire.Data)
			if err != nil {
				t.Errorf("AllGather on participant %d: %v", i, err)
				return
			}
			sorted := append([]int{}, got...)
			sort.Ints(sorted)
			results[i] = sorted
		}(i, p)
	}
	wg.Wait()

	expected := append([]int{}, contributed...)
	sort.Ints(expected)
	for i, got := range results {
		if !equalInts(got, expected) {
			t.Fatalf("participant %d: expected %v, got %v", i, expected, got)
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
