package mkcore

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticPartitionCoversAllItems(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	parts := StaticPartition(items, 3)
	require.Len(t, parts, 3)

	var total int
	for _, p := range parts {
		total += len(p.Items)
	}
	require.Equal(t, len(items), total)
}

func TestDispatcherRunVisitsEveryItemExactlyOnce(t *testing.T) {
	items := make([]int, 0, 100)
	for i := 1; i <= 100; i++ {
		items = append(items, i)
	}

	var mu sync.Mutex
	seen := make(map[int]bool)

	d := &Dispatcher{NumWorkers: 4}
	err := d.Run(items, func(wc *WorkerContext, part Partition) error {
		for _, lab := range part.Items {
			mu.Lock()
			seen[lab] = true
			mu.Unlock()
		}
		return nil
	})
	require.NoError(t, err)
	require.Len(t, seen, 100)
}

func TestDispatcherSurfacesFirstError(t *testing.T) {
	items := []int{1, 2, 3, 4}
	d := &Dispatcher{NumWorkers: 2}
	err := d.Run(items, func(wc *WorkerContext, part Partition) error {
		return NewContractError("test", ErrZeroObjects)
	})
	require.Error(t, err)
}

func TestObjectRowAllocatorClaimsDisjointBlocks(t *testing.T) {
	a := NewObjectRowAllocator()
	first := a.Claim(7, 3)
	second := a.Claim(7, 2)
	require.Equal(t, 0, first)
	require.Equal(t, 3, second)
}
