package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SketchBoard/internal/geometry"
)

func TestCreateKeepsID(t *testing.T) {
	for _, k := range []Kind{KindLine, KindRectangle, KindFreedraw} {
		e, err := Create(7, 1, 2, 3, 4, k)
		require.NoError(t, err)
		assert.Equal(t, ID(7), e.ID)
		assert.Equal(t, k, e.Type)
	}
}

func TestCreateFreedrawStartsSinglePoint(t *testing.T) {
	e, err := Create(0, 4, 5, 9, 9, KindFreedraw)
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point{{X: 4, Y: 5}}, e.Points)
}

func TestCreateUnrecognized(t *testing.T) {
	_, err := Create(0, 0, 0, 0, 0, Kind("circle"))
	assert.ErrorIs(t, err, ErrUnrecognizedElementType)

	_, err = ParseKind("ellipse")
	assert.ErrorIs(t, err, ErrUnrecognizedElementType)

	k, err := ParseKind("rectangle")
	require.NoError(t, err)
	assert.Equal(t, KindRectangle, k)
}

func TestNeedsNormalization(t *testing.T) {
	assert.True(t, NeedsNormalization(KindLine))
	assert.True(t, NeedsNormalization(KindRectangle))
	assert.False(t, NeedsNormalization(KindFreedraw))
}

func TestNormalize(t *testing.T) {
	r := NewRectangle(0, geometry.Coords{X1: 50, Y1: 50, X2: 10, Y2: 10})
	assert.Equal(t, geometry.Coords{X1: 10, Y1: 10, X2: 50, Y2: 50}, Normalize(r))

	l := NewLine(1, geometry.Coords{X1: 30, Y1: 0, X2: 0, Y2: 30})
	assert.Equal(t, geometry.Coords{X1: 0, Y1: 30, X2: 30, Y2: 0}, Normalize(l))
}

func TestHitTestPrefersNewest(t *testing.T) {
	older := NewRectangle(0, geometry.Coords{X1: 0, Y1: 0, X2: 100, Y2: 100})
	newer := NewRectangle(1, geometry.Coords{X1: 20, Y1: 20, X2: 80, Y2: 80})

	hit, ok := HitTest(50, 50, []Element{older, newer})
	require.True(t, ok)
	assert.Equal(t, ID(1), hit.Element.ID)
	assert.Equal(t, geometry.Inside, hit.Position)

	hit, ok = HitTest(10, 50, []Element{older, newer})
	require.True(t, ok)
	assert.Equal(t, ID(0), hit.Element.ID)
}

func TestHitTestMiss(t *testing.T) {
	els := []Element{
		NewLine(0, geometry.Coords{X1: 0, Y1: 0, X2: 10, Y2: 0}),
		NewFreedraw(1, 200, 200).WithPoint(210, 200),
	}
	_, ok := HitTest(100, 100, els)
	assert.False(t, ok)

	hit, ok := HitTest(205, 202, els)
	require.True(t, ok)
	assert.Equal(t, ID(1), hit.Element.ID)
	assert.Equal(t, geometry.Inside, hit.Position)
}

func TestDrawable(t *testing.T) {
	r := NewRectangle(0, geometry.Coords{X1: 0, Y1: 0, X2: 10, Y2: 20})
	d := r.Drawable()
	assert.False(t, d.Fill)
	assert.True(t, d.Closed)
	assert.Len(t, d.Path, 4)

	l := NewLine(1, geometry.Coords{X1: 0, Y1: 0, X2: 10, Y2: 20})
	assert.Len(t, l.Drawable().Path, 2)

	f := NewFreedraw(2, 0, 0)
	assert.Len(t, f.Drawable().Path, 12)

	f = f.WithPoint(10, 0).WithPoint(10, 0).WithPoint(20, 0)
	d = f.Drawable()
	assert.True(t, d.Fill)
	// Three distinct points, offset on both sides.
	require.Len(t, d.Path, 6)
	assert.InDelta(t, 5, d.Path[0].Y, 1e-9)
	assert.InDelta(t, -5, d.Path[5].Y, 1e-9)
}
