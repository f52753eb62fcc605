package printadapter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTotal(t *testing.T) {
	for pages := 1; pages <= 7; pages++ {
		for copies := 1; copies <= 5; copies++ {
			assert.Equal(t, pages*copies, NewPlan(pages, copies).Total(), "pages=%d copies=%d", pages, copies)
		}
	}
}

func TestPlanNonPositiveCopiesIsOne(t *testing.T) {
	assert.Equal(t, 4, NewPlan(4, 0).Total())
	assert.Equal(t, 4, NewPlan(4, -3).Total())
	assert.Equal(t, 4, Plan{SourcePages: 4}.Total())
}

func TestPlanEmptySource(t *testing.T) {
	p := NewPlan(0, 3)
	assert.Equal(t, 0, p.Total())
	assert.NotPanics(t, func() {
		assert.Equal(t, 0, p.SourceIndex(0))
		assert.Equal(t, 0, p.SourceIndex(5))
	})
}

func TestPlanSourceIndexCycles(t *testing.T) {
	p := NewPlan(3, 2)
	var got []int
	for i := 0; i < p.Total(); i++ {
		got = append(got, p.SourceIndex(i))
	}
	assert.Equal(t, []int{0, 1, 2, 0, 1, 2}, got)

	for pages := 1; pages <= 5; pages++ {
		p := NewPlan(pages, 4)
		for i := 0; i < p.Total(); i++ {
			require.Equal(t, i%pages, p.SourceIndex(i))
		}
	}
}

func TestCountPagesNilDocument(t *testing.T) {
	_, err := CountPages(nil)
	assert.ErrorIs(t, err, ErrDocumentUnreadable)
}

func TestPlanTotalSaturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, NewPlan(3, 1<<62+1).Total())
	assert.Equal(t, math.MaxInt, NewPlan(math.MaxInt, 2).Total())
	assert.Equal(t, 3<<50, NewPlan(3, 1<<50).Total())
	assert.Equal(t, 1, NewPlan(3, 1<<62+1).SourceIndex(1))
}
