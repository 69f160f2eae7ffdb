/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"golang.org/x/xerrors"

	"github.com/obscura-pdf/obscura/common"
	"github.com/obscura-pdf/obscura/core"
	"github.com/obscura-pdf/obscura/internal/transform"
	"github.com/obscura-pdf/obscura/model"
	"github.com/obscura-pdf/obscura/model/fonts"
)

// GraphicsState is the mutable state of the PDF interpreter outside
// text objects. Only the fields that influence geometry are tracked
// fully; colors are recorded but never affect bounds.
type GraphicsState struct {
	CTM         transform.Matrix
	FillColor   []float64
	StrokeColor []float64
	LineWidth   float64
}

// GraphicStateStack represents a stack of GraphicsState.
type GraphicStateStack []GraphicsState

// Push pushes `gs` on the `gsStack`.
func (gsStack *GraphicStateStack) Push(gs GraphicsState) {
	*gsStack = append(*gsStack, gs)
}

// Pop pops and returns the topmost GraphicsState off the `gsStack`.
func (gsStack *GraphicStateStack) Pop() GraphicsState {
	gs := (*gsStack)[len(*gsStack)-1]
	*gsStack = (*gsStack)[:len(*gsStack)-1]
	return gs
}

// Transform returns coordinates x, y transformed by the CTM.
func (gs *GraphicsState) Transform(x, y float64) (float64, float64) {
	return gs.CTM.Transform(x, y)
}

// StructuralError records a recoverable structural defect found while
// processing, such as a text operator outside BT/ET. The offending
// operation is preserved untouched.
type StructuralError struct {
	Index   int
	Operand string
	Reason  string
}

// ContentStreamProcessor runs the interpreter state machine over a
// parsed operation list, assigning each operation its category and, for
// drawing operations, its bounding box in PDF user space.
type ContentStreamProcessor struct {
	graphicsStack GraphicStateStack
	graphicsState GraphicsState
	operations    Operations

	text textState

	// Path accumulation: indices of the construction operations of the
	// path being built, its device-space points, and whether the path
	// was marked as a clipping path.
	pathOps      []int
	pathPoints   []transform.Point
	currentPoint transform.Point
	clipMarked   bool

	fontProvider *fonts.Provider
	page         model.PageHandle

	structuralErrs []StructuralError
	usedFallback   bool
}

// NewContentStreamProcessor returns a new ContentStreamProcessor for
// operations `ops` using `provider` for font metric resolution.
func NewContentStreamProcessor(ops Operations, provider *fonts.Provider) *ContentStreamProcessor {
	return &ContentStreamProcessor{
		graphicsStack: GraphicStateStack{},
		operations:    ops,
		fontProvider:  provider,
	}
}

// StructuralErrors returns the recoverable defects recorded during the
// last Process call.
func (proc *ContentStreamProcessor) StructuralErrors() []StructuralError {
	return proc.structuralErrs
}

// UsedFallbackMetrics returns true if any font was resolved with the
// conservative fallback profile.
func (proc *ContentStreamProcessor) UsedFallbackMetrics() bool {
	return proc.usedFallback
}

// Process interprets the full operation list against `page`, assigning
// Kind and BBox to every operation. It returns ErrUnbalancedState when
// the stream ends inside an open q/Q or BT/ET group.
func (proc *ContentStreamProcessor) Process(page model.PageHandle) error {
	proc.page = page
	proc.graphicsState = GraphicsState{
		CTM:         transform.IdentityMatrix(),
		FillColor:   []float64{0},
		StrokeColor: []float64{0},
		LineWidth:   1.0,
	}
	proc.text = newTextState()

	for i, op := range proc.operations {
		if err := proc.processOp(i, op); err != nil {
			return err
		}
	}

	if len(proc.graphicsStack) > 0 {
		common.Log.Debug("ERROR: %d unbalanced q operators at end of stream", len(proc.graphicsStack))
		return xerrors.Errorf("%d unclosed q: %w", len(proc.graphicsStack), ErrUnbalancedState)
	}
	if proc.text.inText {
		common.Log.Debug("ERROR: unterminated BT at end of stream")
		return xerrors.Errorf("unterminated BT: %w", ErrUnbalancedState)
	}

	return nil
}

func (proc *ContentStreamProcessor) processOp(index int, op *Operation) error {
	switch op.Operand {
	case "q":
		proc.graphicsStack.Push(proc.graphicsState)
	case "Q":
		if len(proc.graphicsStack) == 0 {
			common.Log.Warning("Invalid `Q` operator. Graphics state stack is empty. Skipping.")
			proc.recordErr(index, op, "Q with empty graphics state stack")
			break
		}
		proc.graphicsState = proc.graphicsStack.Pop()
	case "cm":
		f, err := proc.floatParams(op, 6)
		if err != nil {
			return err
		}
		m := transform.NewMatrix(f[0], f[1], f[2], f[3], f[4], f[5])
		proc.graphicsState.CTM.Concat(m)
	case "w":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.graphicsState.LineWidth = f[0]
	case "J", "j", "M", "d", "ri", "i", "gs":
		// Remaining general graphics state operators: tracked as state
		// changes, no geometry.

	// Path construction.
	case "m":
		f, err := proc.floatParams(op, 2)
		if err != nil {
			return err
		}
		proc.moveTo(index, f[0], f[1])
	case "l":
		f, err := proc.floatParams(op, 2)
		if err != nil {
			return err
		}
		proc.lineTo(index, f[0], f[1])
	case "c":
		f, err := proc.floatParams(op, 6)
		if err != nil {
			return err
		}
		// Control points bound the curve, so including them is safe.
		proc.addPathPoint(f[0], f[1])
		proc.addPathPoint(f[2], f[3])
		proc.lineTo(index, f[4], f[5])
	case "v", "y":
		f, err := proc.floatParams(op, 4)
		if err != nil {
			return err
		}
		proc.addPathPoint(f[0], f[1])
		proc.lineTo(index, f[2], f[3])
	case "re":
		f, err := proc.floatParams(op, 4)
		if err != nil {
			return err
		}
		x, y, w, h := f[0], f[1], f[2], f[3]
		proc.addPathPoint(x, y)
		proc.addPathPoint(x+w, y)
		proc.addPathPoint(x+w, y+h)
		proc.addPathPoint(x, y+h)
		proc.pathOps = append(proc.pathOps, index)
		proc.currentPoint = transform.NewPoint(x, y)
	case "h":
		proc.pathOps = append(proc.pathOps, index)

	// Path painting.
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
		proc.paintPath(index, op)
	case "n":
		// Ends the path without painting; used to apply a pending
		// clipping path. No ink, so the whole group stays state-only.
		proc.resetPath()
	case "W", "W*":
		proc.clipMarked = true

	// Text object.
	case "BT":
		if proc.text.inText {
			proc.recordErr(index, op, "nested BT")
		}
		proc.text.begin()
	case "ET":
		if !proc.text.inText {
			proc.recordErr(index, op, "ET outside text object")
		}
		proc.text.end()

	// Text state.
	case "Tf":
		if len(op.Params) != 2 {
			return xerrors.Errorf("Tf: %w", ErrInvalidParams)
		}
		name, ok := op.Params[0].(*core.PdfObjectName)
		if !ok {
			return xerrors.Errorf("Tf font name: %w", ErrInvalidParams)
		}
		size, err := core.GetNumberAsFloat(op.Params[1])
		if err != nil {
			return xerrors.Errorf("Tf font size: %w", ErrInvalidParams)
		}
		proc.setFont(name.String(), size)
	case "Tc":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.tc = f[0]
	case "Tw":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.tw = f[0]
	case "Tz":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.th = f[0] / 100.0
	case "TL":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.tl = f[0]
	case "Ts":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.trise = f[0]
	case "Tr":
		f, err := proc.floatParams(op, 1)
		if err != nil {
			return err
		}
		proc.text.tmode = int(f[0])

	// Text positioning.
	case "Td":
		f, err := proc.floatParams(op, 2)
		if err != nil {
			return err
		}
		proc.requireText(index, op)
		proc.text.moveText(f[0], f[1])
	case "TD":
		f, err := proc.floatParams(op, 2)
		if err != nil {
			return err
		}
		proc.requireText(index, op)
		proc.text.tl = -f[1]
		proc.text.moveText(f[0], f[1])
	case "Tm":
		f, err := proc.floatParams(op, 6)
		if err != nil {
			return err
		}
		proc.requireText(index, op)
		proc.text.setMatrix(f)
	case "T*":
		proc.requireText(index, op)
		proc.text.nextLine()

	// Text showing.
	case "Tj":
		if !proc.requireText(index, op) {
			break
		}
		str, ok := stringParam(op, 0)
		if !ok {
			return xerrors.Errorf("Tj: %w", ErrInvalidParams)
		}
		proc.showText(op, str.Bytes())
	case "'":
		if !proc.requireText(index, op) {
			break
		}
		str, ok := stringParam(op, 0)
		if !ok {
			return xerrors.Errorf("': %w", ErrInvalidParams)
		}
		proc.text.nextLine()
		proc.showText(op, str.Bytes())
	case "\"":
		if !proc.requireText(index, op) {
			break
		}
		if len(op.Params) != 3 {
			return xerrors.Errorf("\": %w", ErrInvalidParams)
		}
		aw, err := core.GetNumberAsFloat(op.Params[0])
		if err != nil {
			return xerrors.Errorf("\" word spacing: %w", ErrInvalidParams)
		}
		ac, err := core.GetNumberAsFloat(op.Params[1])
		if err != nil {
			return xerrors.Errorf("\" char spacing: %w", ErrInvalidParams)
		}
		str, ok := stringParam(op, 2)
		if !ok {
			return xerrors.Errorf("\": %w", ErrInvalidParams)
		}
		proc.text.tw = aw
		proc.text.tc = ac
		proc.text.nextLine()
		proc.showText(op, str.Bytes())
	case "TJ":
		if !proc.requireText(index, op) {
			break
		}
		if len(op.Params) != 1 {
			return xerrors.Errorf("TJ: %w", ErrInvalidParams)
		}
		arr, ok := op.Params[0].(*core.PdfObjectArray)
		if !ok {
			return xerrors.Errorf("TJ array: %w", ErrInvalidParams)
		}
		proc.showTextAdjusted(op, arr)

	// Color operators: affect only color state, never geometry.
	case "g", "rg", "k", "sc", "scn":
		if f, err := core.GetNumbersAsFloat(numericParams(op)); err == nil {
			proc.graphicsState.FillColor = f
		}
	case "G", "RG", "K", "SC", "SCN":
		if f, err := core.GetNumbersAsFloat(numericParams(op)); err == nil {
			proc.graphicsState.StrokeColor = f
		}
	case "CS", "cs":
		// Colorspace selection.

	// XObjects.
	case "Do":
		if len(op.Params) != 1 {
			return xerrors.Errorf("Do: %w", ErrInvalidParams)
		}
		name, ok := op.Params[0].(*core.PdfObjectName)
		if !ok {
			return xerrors.Errorf("Do name: %w", ErrInvalidParams)
		}
		if proc.page != nil && proc.page.ImageXObject(name.String()) {
			op.Kind = KindImage
			op.BBox = proc.unitSquareBBox()
		} else {
			// Form XObjects are not recursed into; keep the invocation.
			op.Kind = KindPassthrough
		}

	// Inline images are captured raw by the parser.
	case "BI":
		op.Kind = KindPassthrough

	// Marked content and compatibility sections.
	case "BMC", "BDC", "EMC", "BX", "EX":

	default:
		common.Log.Debug("Unrecognized operator %q preserved as passthrough", op.Operand)
		op.Kind = KindPassthrough
	}

	return nil
}

// requireText records a structural error when a text operator appears
// outside BT/ET. Returns true when inside a text object.
func (proc *ContentStreamProcessor) requireText(index int, op *Operation) bool {
	if !proc.text.inText {
		proc.recordErr(index, op, "text operator outside BT/ET")
		return false
	}
	return true
}

func (proc *ContentStreamProcessor) recordErr(index int, op *Operation, reason string) {
	proc.structuralErrs = append(proc.structuralErrs, StructuralError{
		Index:   index,
		Operand: op.Operand,
		Reason:  reason,
	})
}

// floatParams returns exactly `count` numeric parameters of `op`.
func (proc *ContentStreamProcessor) floatParams(op *Operation, count int) ([]float64, error) {
	if len(op.Params) != count {
		common.Log.Debug("ERROR: Invalid number of parameters for %s: %d", op.Operand, len(op.Params))
		return nil, xerrors.Errorf("%s with %d parameters: %w", op.Operand, len(op.Params), ErrInvalidParams)
	}
	f, err := core.GetNumbersAsFloat(op.Params)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", op.Operand, ErrInvalidParams)
	}
	return f, nil
}

func stringParam(op *Operation, i int) (*core.PdfObjectString, bool) {
	if i >= len(op.Params) {
		return nil, false
	}
	str, ok := op.Params[i].(*core.PdfObjectString)
	return str, ok
}

func numericParams(op *Operation) []core.PdfObject {
	var out []core.PdfObject
	for _, p := range op.Params {
		switch p.(type) {
		case *core.PdfObjectInteger, *core.PdfObjectFloat:
			out = append(out, p)
		}
	}
	return out
}

// setFont resolves metrics for the newly selected font.
func (proc *ContentStreamProcessor) setFont(name string, size float64) {
	proc.text.fontName = name
	proc.text.tfs = size
	if proc.fontProvider == nil || proc.page == nil {
		proc.text.metrics = nil
		return
	}
	m := proc.fontProvider.MetricsFor(name, proc.page)
	proc.text.metrics = m
	if m.Fallback {
		proc.usedFallback = true
	}
}

// addPathPoint appends the user-space point (x, y), transformed by the
// CTM, to the current path bound.
func (proc *ContentStreamProcessor) addPathPoint(x, y float64) {
	px, py := proc.graphicsState.Transform(x, y)
	proc.pathPoints = append(proc.pathPoints, transform.NewPoint(px, py))
}

func (proc *ContentStreamProcessor) moveTo(index int, x, y float64) {
	proc.addPathPoint(x, y)
	proc.pathOps = append(proc.pathOps, index)
	proc.currentPoint = transform.NewPoint(x, y)
}

func (proc *ContentStreamProcessor) lineTo(index int, x, y float64) {
	proc.addPathPoint(x, y)
	proc.pathOps = append(proc.pathOps, index)
	proc.currentPoint = transform.NewPoint(x, y)
}

// paintPath closes out the current path group. The painting operation
// and every construction operation of the group share one bounding box,
// so the filter keeps or removes them together. A path marked as a
// clipping path is kept whole: evaluating clip regions is out of scope
// and removing one would change everything painted after it.
func (proc *ContentStreamProcessor) paintPath(index int, op *Operation) {
	if proc.clipMarked || len(proc.pathPoints) == 0 {
		proc.resetPath()
		return
	}

	bbox := boundsOfPoints(proc.pathPoints)

	// Stroking extends the ink by half the line width on each side.
	if op.Operand != "f" && op.Operand != "F" && op.Operand != "f*" {
		sx := proc.graphicsState.CTM.ScalingFactorX()
		sy := proc.graphicsState.CTM.ScalingFactorY()
		bbox.Llx -= proc.graphicsState.LineWidth * sx / 2
		bbox.Urx += proc.graphicsState.LineWidth * sx / 2
		bbox.Lly -= proc.graphicsState.LineWidth * sy / 2
		bbox.Ury += proc.graphicsState.LineWidth * sy / 2
	}

	fill := append([]float64(nil), proc.graphicsState.FillColor...)

	op.Kind = KindPath
	op.BBox = &bbox
	op.FillColor = fill
	for _, i := range proc.pathOps {
		proc.operations[i].Kind = KindPath
		proc.operations[i].BBox = &bbox
		proc.operations[i].FillColor = fill
	}
	proc.resetPath()
}

func (proc *ContentStreamProcessor) resetPath() {
	proc.pathOps = nil
	proc.pathPoints = nil
	proc.clipMarked = false
}

// unitSquareBBox returns the CTM image of the unit square, the
// placement rectangle of an XObject.
func (proc *ContentStreamProcessor) unitSquareBBox() *model.PdfRectangle {
	corners := []transform.Point{
		proc.graphicsState.CTM.TransformPoint(transform.NewPoint(0, 0)),
		proc.graphicsState.CTM.TransformPoint(transform.NewPoint(1, 0)),
		proc.graphicsState.CTM.TransformPoint(transform.NewPoint(1, 1)),
		proc.graphicsState.CTM.TransformPoint(transform.NewPoint(0, 1)),
	}
	bbox := boundsOfPoints(corners)
	return &bbox
}

func boundsOfPoints(points []transform.Point) model.PdfRectangle {
	bbox := model.PdfRectangle{
		Llx: points[0].X, Lly: points[0].Y,
		Urx: points[0].X, Ury: points[0].Y,
	}
	for _, p := range points[1:] {
		if p.X < bbox.Llx {
			bbox.Llx = p.X
		}
		if p.X > bbox.Urx {
			bbox.Urx = p.X
		}
		if p.Y < bbox.Lly {
			bbox.Lly = p.Y
		}
		if p.Y > bbox.Ury {
			bbox.Ury = p.Y
		}
	}
	return bbox
}
