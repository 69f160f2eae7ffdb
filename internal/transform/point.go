/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package transform

import (
	"fmt"
)

// Point defines a point (X,Y) in Cartesian coordinates.
type Point struct {
	X float64
	Y float64
}

// NewPoint returns a Point at `(x,y)`.
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Set mutates `p` to be at `(x,y)`.
func (p *Point) Set(x, y float64) {
	p.X, p.Y = x, y
}

// Transform mutates `p` by the affine transformation a, b, c, d, tx, ty.
func (p *Point) Transform(a, b, c, d, tx, ty float64) {
	m := NewMatrix(a, b, c, d, tx, ty)
	p.transformByMatrix(m)
}

// Displace returns a new Point at `p` displaced by `delta`.
func (p Point) Displace(delta Point) Point {
	return Point{p.X + delta.X, p.Y + delta.Y}
}

// transformByMatrix mutates `p` by the affine transform `m`.
func (p *Point) transformByMatrix(m Matrix) {
	p.X, p.Y = m.Transform(p.X, p.Y)
}

// String returns a string describing `p`.
func (p Point) String() string {
	return fmt.Sprintf("(%.2f,%.2f)", p.X, p.Y)
}
