/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1.0e-10

func TestIdentity(t *testing.T) {
	m := IdentityMatrix()
	x, y := m.Transform(3.5, -7.25)
	assert.Equal(t, 3.5, x)
	assert.Equal(t, -7.25, y)
	assert.True(t, m.Identity())
}

func TestTranslation(t *testing.T) {
	m := TranslationMatrix(10, 20)
	x, y := m.Transform(1, 2)
	assert.Equal(t, 11.0, x)
	assert.Equal(t, 22.0, y)
}

// TestConcatOrder checks that Concat applies the argument before the
// receiver, the PDF convention for the cm operator: CTM' = local × CTM.
func TestConcatOrder(t *testing.T) {
	// Scale then translate: the point is scaled first.
	ctm := TranslationMatrix(100, 0)
	ctm.Concat(NewMatrix(2, 0, 0, 2, 0, 0))
	x, y := ctm.Transform(1, 1)
	assert.InDelta(t, 102.0, x, tol)
	assert.InDelta(t, 2.0, y, tol)

	// Translate then scale: the translation is scaled too.
	ctm = ScaleMatrix(2, 2)
	ctm.Concat(TranslationMatrix(100, 0))
	x, y = ctm.Transform(1, 1)
	assert.InDelta(t, 202.0, x, tol)
	assert.InDelta(t, 2.0, y, tol)
}

func TestRotate(t *testing.T) {
	m := IdentityMatrix().Rotate(90)
	x, y := m.Transform(1, 0)
	assert.InDelta(t, 0.0, x, tol)
	assert.InDelta(t, 1.0, y, tol)

	m = IdentityMatrix().Rotate(180)
	x, y = m.Transform(1, 2)
	assert.InDelta(t, -1.0, x, tol)
	assert.InDelta(t, -2.0, y, tol)
}

func TestScalingFactors(t *testing.T) {
	m := NewMatrix(3, 0, 0, 4, 7, 8)
	assert.InDelta(t, 3.0, m.ScalingFactorX(), tol)
	assert.InDelta(t, 4.0, m.ScalingFactorY(), tol)

	// Rotation does not change the scaling factors.
	m = m.Rotate(37)
	assert.InDelta(t, 3.0, m.ScalingFactorX(), tol)
	assert.InDelta(t, 4.0, m.ScalingFactorY(), tol)
}

func TestInverse(t *testing.T) {
	m := NewMatrix(2, 0, 0, 3, 10, -20)
	inv, ok := m.Inverse()
	require.True(t, ok)

	x, y := m.Transform(5, 6)
	xb, yb := inv.Transform(x, y)
	assert.InDelta(t, 5.0, xb, tol)
	assert.InDelta(t, 6.0, yb, tol)

	// Degenerate matrix has no inverse.
	_, ok = NewMatrix(0, 0, 0, 0, 1, 1).Inverse()
	assert.False(t, ok)
}

func TestClampRange(t *testing.T) {
	m := NewMatrix(1e300, 0, 0, 1, 0, 0)
	assert.Equal(t, 1e9, m[0])

	m = NewMatrix(-1e300, 0, 0, 1, 0, 0)
	assert.Equal(t, -1e9, m[0])
}

func TestRoundTripRotations(t *testing.T) {
	for theta := 0.0; theta < 360.0; theta += 7.3 {
		m := IdentityMatrix().Rotate(theta)
		inv, ok := m.Inverse()
		require.True(t, ok, "theta=%g", theta)

		x, y := m.Transform(12.5, -3.25)
		xb, yb := inv.Transform(x, y)
		if math.Abs(xb-12.5) > 1e-9 || math.Abs(yb+3.25) > 1e-9 {
			t.Fatalf("round trip failed for theta=%g: (%g,%g)", theta, xb, yb)
		}
	}
}
