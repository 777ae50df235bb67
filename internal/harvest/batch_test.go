package harvest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPartitionPreservesOrder(t *testing.T) {
	t.Parallel()

	for _, size := range []int{1, 2, 3, 7, 50} {
		for _, n := range []int{0, 1, 2, 49, 50, 51} {
			titles := make([]string, n)
			for i := range titles {
				titles[i] = fmt.Sprintf("t%04d", i)
			}

			var flattened []string
			for _, chunk := range Partition(titles, size) {
				require.NotEmpty(t, chunk)
				require.LessOrEqual(t, len(chunk), size)
				flattened = append(flattened, chunk...)
			}
			require.Equal(t, titles, flattened, "batch size %d, %d titles", size, n)
		}
	}
}

func TestPartitionLastChunkShorter(t *testing.T) {
	t.Parallel()

	chunks := Partition([]string{"A", "B", "C", "D", "E"}, 2)
	require.Equal(t, [][]string{{"A", "B"}, {"C", "D"}, {"E"}}, chunks)
}

func TestPartitionNonpositiveSize(t *testing.T) {
	t.Parallel()

	titles := []string{"A", "B"}
	require.Equal(t, [][]string{titles}, Partition(titles, 0))
}

func TestPartitionEmpty(t *testing.T) {
	t.Parallel()

	require.Nil(t, Partition(nil, 10))
}
