/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package contentstream parses PDF page content streams into typed
// operation lists with per-operation bounding boxes, and serializes
// filtered operation lists back to content-stream bytes.
package contentstream

import (
	"bytes"

	"github.com/obscura-pdf/obscura/core"
	"github.com/obscura-pdf/obscura/model"
)

// OperationKind categorizes a content stream operation for filtering.
type OperationKind int

// Operation categories. Only Text, Path and Image operations carry a
// bounding box and are candidates for removal; StateChange and
// Passthrough operations are always kept since removing them would
// corrupt downstream interpreter state.
const (
	// KindStateChange covers all non-drawing operators: state save and
	// restore, CTM and color changes, text state and positioning,
	// clipping, marked content and path construction that is never
	// painted.
	KindStateChange OperationKind = iota

	// KindText is a text-showing operation (Tj, TJ, ' or ").
	KindText

	// KindPath covers the construction and painting operators of a
	// painted path. All operations of one path group share a bounding
	// box so the group is kept or removed as a whole.
	KindPath

	// KindImage is the invocation of an image XObject.
	KindImage

	// KindPassthrough marks segments the engine does not interpret:
	// inline images, form XObject invocations and unrecognized
	// operators. Emitted verbatim, never filtered.
	KindPassthrough
)

// Operation represents a single operation in a PDF content stream: the
// operand (operator name) preceded by its parameters, plus the category
// and geometry the processor assigns.
type Operation struct {
	Params  []core.PdfObject
	Operand string

	// Kind is assigned by the ContentStreamProcessor.
	Kind OperationKind

	// BBox is the axis-aligned bounding rectangle of the operation's
	// fully transformed ink in PDF user space. Nil for state changes
	// and passthrough segments.
	BBox *model.PdfRectangle

	// RawData holds the verbatim bytes of an inline image (from the
	// first byte after "BI" through "EI" inclusive).
	RawData []byte

	// Text carries the shown bytes of a text-showing operation, for
	// diagnostics and verification.
	Text     []byte
	FontName string
	FontSize float64

	// FillColor is the non-stroking color in effect when a path group
	// was painted, recorded so existing redaction marks can be
	// recognized.
	FillColor []float64
}

// IsPathPainting returns true if the operation paints (strokes or
// fills) the current path.
func (op *Operation) IsPathPainting() bool {
	switch op.Operand {
	case "S", "s", "f", "F", "f*", "B", "B*", "b", "b*":
		return true
	}
	return false
}

// IsTextShowing returns true if the operation shows text.
func (op *Operation) IsTextShowing() bool {
	switch op.Operand {
	case "Tj", "TJ", "'", "\"":
		return true
	}
	return false
}

// Operations is an ordered list of content stream operations.
type Operations []*Operation

// Bytes converts the operations to a content stream byte presentation,
// i.e. the kind that can be stored as a PDF stream. Each operation is
// emitted with single spaces between tokens and an LF after the
// operator; inline images are emitted verbatim.
func (ops Operations) Bytes() []byte {
	var buf bytes.Buffer

	for _, op := range ops {
		if op == nil {
			continue
		}

		if op.Operand == "BI" {
			// Inline image: the raw bytes already contain the image
			// dictionary, data and the closing EI.
			buf.WriteString("BI ")
			buf.Write(op.RawData)
			buf.WriteString("\n")
			continue
		}

		for _, param := range op.Params {
			buf.WriteString(param.WriteString())
			buf.WriteString(" ")
		}
		buf.WriteString(op.Operand + "\n")
	}

	return buf.Bytes()
}

// String returns `ops.Bytes()` as a string.
func (ops Operations) String() string {
	return string(ops.Bytes())
}
