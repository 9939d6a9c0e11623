package printing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanPages(t *testing.T) {
	// 1024 CSS px captured at scale 2
	const width = 2048
	// rows that fit on one A4 page at this width: 2048*297/210 = 2896.46
	tests := []struct {
		name      string
		height    int
		wantPages int
	}{
		{"short invoice fits on one page", 1200, 1},
		{"exactly one page of rows", 2896, 1},
		{"one row over spills to a second page", 2897, 2},
		{"two point three pages of content", 6662, 3},
		{"single row", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := PlanPages(PaperSizeA4, width, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPages, layout.PageCount())
			assert.Equal(t, PaperSizeA4, layout.Paper)
			assert.Equal(t, width, layout.ImageWidth)
			assert.Equal(t, tt.height, layout.ImageHeight)
		})
	}
}

func TestPlanPages_SlicesAreContiguous(t *testing.T) {
	for _, height := range []int{1, 500, 2896, 2897, 6662, 10000, 28965} {
		layout, err := PlanPages(PaperSizeA4, 2048, height)
		require.NoError(t, err)

		expectedTop := 0
		for i, s := range layout.Slices {
			assert.Equal(t, i, s.Index)
			assert.Equal(t, expectedTop, s.Top, "height %d slice %d", height, i)
			assert.Greater(t, s.Height(), 0, "height %d slice %d", height, i)
			expectedTop = s.Bottom
		}
		assert.Equal(t, height, expectedTop, "slices must cover every row")
	}
}

func TestPlanPages_LastPageHoldsRemainder(t *testing.T) {
	layout, err := PlanPages(PaperSizeA4, 2048, 6662)
	require.NoError(t, err)
	require.Len(t, layout.Slices, 3)

	full := layout.Slices[0].Height()
	assert.InDelta(t, 2896, full, 1)
	assert.InDelta(t, full, layout.Slices[1].Height(), 1)
	assert.Less(t, layout.Slices[2].Height(), full)
}

func TestPlanPages_InvalidDimensions(t *testing.T) {
	_, err := PlanPages(PaperSizeA4, 0, 100)
	assert.Error(t, err)

	_, err = PlanPages(PaperSizeA4, 100, 0)
	assert.Error(t, err)

	_, err = PlanPages(PaperSizeA4, -1, -1)
	assert.Error(t, err)
}
