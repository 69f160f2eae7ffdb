/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package model provides the shared data structures of the redaction
// engine: rectangles in PDF user space, the page handle interface the
// engine consumes from the host PDF library, and the redaction result.
package model

import (
	"fmt"
	"math"

	"github.com/obscura-pdf/obscura/core"
)

// PdfRectangle is a definition of a rectangle in PDF user space,
// defined by its lower left (Llx, Lly) and upper right (Urx, Ury) corners.
type PdfRectangle struct {
	Llx float64 // Lower left corner (ll).
	Lly float64
	Urx float64 // Upper right corner (ur).
	Ury float64
}

// NewPdfRectangle returns the normalized rectangle spanning the two corner
// points (x1,y1), (x2,y2).
func NewPdfRectangle(x1, y1, x2, y2 float64) PdfRectangle {
	return PdfRectangle{
		Llx: math.Min(x1, x2),
		Lly: math.Min(y1, y2),
		Urx: math.Max(x1, x2),
		Ury: math.Max(y1, y2),
	}
}

// Height returns the height of `rect`.
func (rect PdfRectangle) Height() float64 {
	return math.Abs(rect.Ury - rect.Lly)
}

// Width returns the width of `rect`.
func (rect PdfRectangle) Width() float64 {
	return math.Abs(rect.Urx - rect.Llx)
}

// Intersects returns true if `rect` and `other` overlap with positive area.
// Rectangles that merely touch along an edge or corner do not intersect,
// so content adjacent to a redaction region is not removed.
func (rect PdfRectangle) Intersects(other PdfRectangle) bool {
	return rect.Llx < other.Urx && other.Llx < rect.Urx &&
		rect.Lly < other.Ury && other.Lly < rect.Ury
}

// Union returns the smallest rectangle containing both `rect` and `other`.
func (rect PdfRectangle) Union(other PdfRectangle) PdfRectangle {
	return PdfRectangle{
		Llx: math.Min(rect.Llx, other.Llx),
		Lly: math.Min(rect.Lly, other.Lly),
		Urx: math.Max(rect.Urx, other.Urx),
		Ury: math.Max(rect.Ury, other.Ury),
	}
}

// ToPdfObject converts rectangle to a PDF array object.
func (rect PdfRectangle) ToPdfObject() core.PdfObject {
	return core.MakeArray(
		core.MakeFloat(rect.Llx),
		core.MakeFloat(rect.Lly),
		core.MakeFloat(rect.Urx),
		core.MakeFloat(rect.Ury),
	)
}

// String returns a string describing `rect`.
func (rect PdfRectangle) String() string {
	return fmt.Sprintf("(%.2f,%.2f)-(%.2f,%.2f)", rect.Llx, rect.Lly, rect.Urx, rect.Ury)
}
