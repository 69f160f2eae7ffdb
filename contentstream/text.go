/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"github.com/obscura-pdf/obscura/common"
	"github.com/obscura-pdf/obscura/core"
	"github.com/obscura-pdf/obscura/internal/transform"
	"github.com/obscura-pdf/obscura/model"
	"github.com/obscura-pdf/obscura/model/fonts"
)

// 9.4.4 Text space details: text is positioned by the text matrix Tm
// and the text line matrix Tlm, both valid only inside a BT/ET pair.
// Text space is converted to user space by the text rendering matrix
//
//	       | Tfs×Th  0      0 |
//	Trm  = | 0       Tfs    0 | × Tm × CTM
//	       | 0       Trise  1 |
//
// The bounds calculation below folds Tfs, Th and Trise into the glyph
// extent directly, so only Tm × CTM is applied as a matrix.
type textState struct {
	tfs   float64 // Font size.
	tc    float64 // Character spacing.
	tw    float64 // Word spacing.
	th    float64 // Horizontal scaling, as a fraction.
	tl    float64 // Leading.
	trise float64 // Text rise.
	tmode int     // Rendering mode.

	fontName string
	metrics  *fonts.FontMetrics

	tm     transform.Matrix // Text matrix.
	tlm    transform.Matrix // Text line matrix.
	inText bool
}

func newTextState() textState {
	return textState{
		th: 1.0,
	}
}

// begin starts a text object: "BT" resets Tm and Tlm to identity.
func (ts *textState) begin() {
	ts.tm = transform.IdentityMatrix()
	ts.tlm = transform.IdentityMatrix()
	ts.inText = true
}

// end leaves the text object: "ET". Tm and Tlm become invalid.
func (ts *textState) end() {
	ts.inText = false
}

// moveText "Td": moves to the start of the next line, offset from the
// start of the current line by (tx, ty).
//
//	Tlm := translate(tx, ty) × Tlm
//	Tm  := Tlm
func (ts *textState) moveText(tx, ty float64) {
	ts.tlm.Concat(transform.TranslationMatrix(tx, ty))
	ts.tm = ts.tlm
}

// setMatrix "Tm": sets the text matrix and the text line matrix to the
// matrix specified by the 6 numbers.
func (ts *textState) setMatrix(f []float64) {
	m := transform.NewMatrix(f[0], f[1], f[2], f[3], f[4], f[5])
	ts.tm = m
	ts.tlm = m
}

// nextLine "T*": moves to the start of the next line using the current
// leading. Equivalent to "0 -Tl Td".
func (ts *textState) nextLine() {
	ts.moveText(0, -ts.tl)
}

// advance translates Tm by `tx` in unscaled text space after a showing
// operation so subsequent positioning stays consistent.
func (ts *textState) advance(tx float64) {
	ts.tm.Concat(transform.TranslationMatrix(tx, 0))
}

// showText computes the bounding box of a Tj/'/" style showing
// operation under the current state, tags `op`, and advances Tm.
func (proc *ContentStreamProcessor) showText(op *Operation, data []byte) {
	w := proc.textWidth(data)
	bbox := proc.textBBox(w)

	op.Kind = KindText
	op.BBox = &bbox
	op.Text = append(op.Text, data...)
	op.FontName = proc.text.fontName
	op.FontSize = proc.text.tfs

	proc.text.advance(w)
}

// showTextAdjusted computes the bounding box of a TJ operation,
// accounting for the inline numeric kerning displacements.
func (proc *ContentStreamProcessor) showTextAdjusted(op *Operation, arr *core.PdfObjectArray) {
	w := 0.0
	var shown []byte
	for _, element := range arr.Elements() {
		switch t := element.(type) {
		case *core.PdfObjectString:
			w += proc.textWidth(t.Bytes())
			shown = append(shown, t.Bytes()...)
		case *core.PdfObjectInteger:
			w -= float64(*t) / 1000.0 * proc.text.tfs * proc.text.th
		case *core.PdfObjectFloat:
			w -= float64(*t) / 1000.0 * proc.text.tfs * proc.text.th
		default:
			common.Log.Debug("TJ element of unexpected type %T ignored", element)
		}
	}
	bbox := proc.textBBox(w)

	op.Kind = KindText
	op.BBox = &bbox
	op.Text = shown
	op.FontName = proc.text.fontName
	op.FontSize = proc.text.tfs

	proc.text.advance(w)
}

// textWidth returns the text-space width of showing `data` under the
// current text state:
//
//	w = Σ (advance_i/1000 × Tfs + Tc + (space ? Tw : 0)) × Th
func (proc *ContentStreamProcessor) textWidth(data []byte) float64 {
	ts := &proc.text
	metrics := ts.metrics
	if metrics == nil {
		// No Tf seen before showing: measure with the fallback profile
		// rather than dropping the bound entirely.
		common.Log.Debug("Text shown before Tf; using fallback metrics")
		metrics = &fonts.FontMetrics{
			Ascent:       fonts.FallbackAscent,
			Descent:      fonts.FallbackDescent,
			DefaultWidth: fonts.FallbackWidth,
			Fallback:     true,
		}
		ts.metrics = metrics
		proc.usedFallback = true
	}

	w := 0.0
	for _, code := range data {
		cw := metrics.WidthOf(code)/1000.0*ts.tfs + ts.tc
		if code == ' ' {
			cw += ts.tw
		}
		w += cw * ts.th
	}
	return w
}

// textBBox returns the user-space bounding box of a glyph run of
// text-space width `w`. The vertical extent spans descent to ascent;
// using the font size alone would miss the descender by hundreds of
// glyph units. Invisible text (rendering mode 3) still gets a box,
// since it remains extractable.
func (proc *ContentStreamProcessor) textBBox(w float64) model.PdfRectangle {
	ts := &proc.text
	var ascentUnits, descentUnits float64 = fonts.FallbackAscent, fonts.FallbackDescent
	if ts.metrics != nil {
		ascentUnits, descentUnits = ts.metrics.Ascent, ts.metrics.Descent
	}
	ascent := ascentUnits / 1000.0 * ts.tfs
	descent := descentUnits / 1000.0 * ts.tfs

	trm := proc.graphicsState.CTM.Mult(ts.tm)
	corners := []transform.Point{
		trm.TransformPoint(transform.NewPoint(0, descent+ts.trise)),
		trm.TransformPoint(transform.NewPoint(w, descent+ts.trise)),
		trm.TransformPoint(transform.NewPoint(w, ascent+ts.trise)),
		trm.TransformPoint(transform.NewPoint(0, ascent+ts.trise)),
	}
	return boundsOfPoints(corners)
}
