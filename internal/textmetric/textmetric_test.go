package textmetric

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFaceWidthMonotonic(t *testing.T) {
	f := Regular()
	short := f.Width("Hi", 10)
	long := f.Width("Hi there", 10)
	require.Greater(t, short, 0.0)
	assert.Greater(t, long, short)

	// Doubling the size roughly doubles the width.
	big := f.Width("Hi there", 20)
	assert.InDelta(t, 2*long, big, 1.0)

	assert.Equal(t, 0.0, f.Width("", 10))
	assert.Equal(t, 0.0, f.Width("x", 0))
}

func TestBoldIsWider(t *testing.T) {
	assert.GreaterOrEqual(t, Bold().Width("Weekly schedule", 12), Regular().Width("Weekly schedule", 12))
}

func TestFaceConcurrentUse(t *testing.T) {
	f := Regular()
	want := f.Width("concurrent", 9)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, f.Width("concurrent", 9))
		}()
	}
	wg.Wait()
}

func TestApprox(t *testing.T) {
	assert.Equal(t, 15.0, Approx{}.Width("abc", 10))
	assert.Equal(t, 6.0, Approx{Ratio: 1}.Width("ab", 3))
	assert.Equal(t, 10.0, Approx{}.Width("éé", 10))
}
