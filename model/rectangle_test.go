/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectangleNormalization(t *testing.T) {
	r := NewPdfRectangle(10, 20, 5, 2)
	assert.Equal(t, 5.0, r.Llx)
	assert.Equal(t, 2.0, r.Lly)
	assert.Equal(t, 10.0, r.Urx)
	assert.Equal(t, 20.0, r.Ury)
	assert.Equal(t, 5.0, r.Width())
	assert.Equal(t, 18.0, r.Height())
}

func TestRectangleIntersects(t *testing.T) {
	base := NewPdfRectangle(0, 0, 100, 100)

	testcases := []struct {
		name     string
		other    PdfRectangle
		expected bool
	}{
		{"contained", NewPdfRectangle(10, 10, 20, 20), true},
		{"overlapping corner", NewPdfRectangle(90, 90, 110, 110), true},
		{"disjoint", NewPdfRectangle(200, 200, 300, 300), false},
		// Touching along an edge is not an intersection, so adjacent
		// content is never removed.
		{"touching right edge", NewPdfRectangle(100, 0, 200, 100), false},
		{"touching top edge", NewPdfRectangle(0, 100, 100, 200), false},
		{"touching corner", NewPdfRectangle(100, 100, 200, 200), false},
		{"surrounding", NewPdfRectangle(-10, -10, 110, 110), true},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, base.Intersects(tc.other))
			assert.Equal(t, tc.expected, tc.other.Intersects(base))
		})
	}
}

func TestRectangleUnion(t *testing.T) {
	a := NewPdfRectangle(0, 0, 10, 10)
	b := NewPdfRectangle(5, -5, 20, 8)
	u := a.Union(b)
	assert.Equal(t, PdfRectangle{Llx: 0, Lly: -5, Urx: 20, Ury: 10}, u)
}
