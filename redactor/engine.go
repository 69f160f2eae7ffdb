/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redactor

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/obscura-pdf/obscura/common"
	"github.com/obscura-pdf/obscura/contentstream"
	"github.com/obscura-pdf/obscura/model"
	"github.com/obscura-pdf/obscura/model/fonts"
)

// Options configures an Engine.
type Options struct {
	// AllowVisualOnly permits drawing a confirmation mark when the
	// region contains no removable content. Off by default: a mark
	// without structural removal is not a redaction.
	AllowVisualOnly bool

	// AuditWriter receives the mandatory per-call audit records.
	// Defaults to os.Stderr.
	AuditWriter io.Writer
}

// Engine performs true content-level redaction on single pages. An
// Engine holds no per-page state and may be reused across pages;
// concurrent calls on the same page must be serialized by the caller.
type Engine struct {
	opts     Options
	auditLog *logrus.Logger
}

// NewEngine returns an Engine with the given options.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:     opts,
		auditLog: newAuditLogger(opts.AuditWriter),
	}
}

// RedactArea removes all content intersecting `region` (pixels at
// `dpi`) from `page`, draws a confirmation mark and verifies the
// removal. On any fatal error the page is left, or rolled back to, its
// original state; the returned result always reflects what actually
// happened and is additionally written to the audit sink.
func (e *Engine) RedactArea(page model.PageHandle, region PixelRect, dpi float64) (*model.RedactionResult, error) {
	conv := NewCoordinateConverter(page, dpi)
	regionPts := conv.ToPointRect(region)

	result := &model.RedactionResult{
		Mode:         model.RedactionModeFailed,
		RegionPoints: regionPts,
	}

	originals := snapshotStreams(page)
	if len(originals) == 0 {
		result.Mode = model.RedactionModeNoContent
		e.audit(result)
		return result, nil
	}

	ops, proc, err := e.parsePage(page, originals)
	if err != nil {
		e.audit(result)
		return result, err
	}
	result.UsedFallbackMetrics = proc.UsedFallbackMetrics()

	kept := make(contentstream.Operations, 0, len(ops))
	for _, op := range ops {
		if op.BBox != nil && removableKind(op.Kind) && op.BBox.Intersects(regionPts) &&
			!isConfirmationMark(op, regionPts) {
			switch {
			case op.IsTextShowing():
				result.TextOpsRemoved++
			case op.IsPathPainting():
				result.PathOpsRemoved++
			case op.Kind == contentstream.KindImage:
				result.ImageOpsRemoved++
			}
			// Path construction operations of a removed group are
			// dropped alongside their painting operation uncounted.
			continue
		}
		kept = append(kept, op)
	}

	removed := result.TextOpsRemoved + result.PathOpsRemoved + result.ImageOpsRemoved
	if removed == 0 {
		result.Mode = model.RedactionModeNoContent
		if e.opts.AllowVisualOnly {
			common.Log.Info("No content in region; drawing visual-only mark on caller's request")
			page.AppendContentStream(confirmationMark(regionPts))
		}
		e.audit(result)
		return result, nil
	}

	newData := contentstream.NewContentStreamBuilder(kept).Build()
	page.ReplaceContentStreams(newData)
	page.AppendContentStream(confirmationMark(regionPts))

	report, err := verifyStream(joinStreams(snapshotStreams(page)), regionPts, page)
	if err != nil {
		restoreStreams(page, originals)
		e.audit(result)
		return result, xerrors.Errorf("verification failed: %w", err)
	}
	if !report.Passed() {
		common.Log.Error("Verifier found %d residual glyph runs in region; rolling back", len(report.Residual))
		restoreStreams(page, originals)
		e.audit(result)
		return result, ErrVerifierDisagreement
	}

	result.Mode = model.RedactionModeTrueRedaction
	e.audit(result)
	return result, nil
}

// VerifyOnly reports the text-showing operations currently intersecting
// `region` without modifying the page. Useful for diagnostics and for
// confirming a prior redaction.
func (e *Engine) VerifyOnly(page model.PageHandle, region PixelRect, dpi float64) (*VerifierReport, error) {
	conv := NewCoordinateConverter(page, dpi)
	regionPts := conv.ToPointRect(region)
	return verifyStream(joinStreams(snapshotStreams(page)), regionPts, page)
}

// parsePage parses and processes the concatenation of the page's
// content streams, so interpreter state flows across blob boundaries.
func (e *Engine) parsePage(page model.PageHandle, blobs [][]byte) (contentstream.Operations, *contentstream.ContentStreamProcessor, error) {
	ops, err := contentstream.NewContentStreamParser(joinStreams(blobs)).Parse()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}

	proc := contentstream.NewContentStreamProcessor(ops, fonts.NewProvider())
	if err := proc.Process(page); err != nil {
		if xerrors.Is(err, contentstream.ErrUnbalancedState) {
			return nil, nil, fmt.Errorf("%w: %v", ErrUnbalancedState, err)
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedStream, err)
	}
	for _, serr := range proc.StructuralErrors() {
		common.Log.Warning("Structural defect at operation %d (%s): %s", serr.Index, serr.Operand, serr.Reason)
	}
	return ops, proc, nil
}

func removableKind(kind contentstream.OperationKind) bool {
	return kind == contentstream.KindText ||
		kind == contentstream.KindPath ||
		kind == contentstream.KindImage
}

// isConfirmationMark recognizes the mark a previous redaction of this
// region left behind: a black-filled path group lying entirely inside
// the region. Such marks are kept, so re-redacting an area reports
// NoContent instead of cycling its own mark.
func isConfirmationMark(op *contentstream.Operation, region model.PdfRectangle) bool {
	if op.Kind != contentstream.KindPath || op.BBox == nil {
		return false
	}
	if !isBlackFill(op.FillColor) {
		return false
	}
	// The mark's coordinates were trimmed to 4 decimals on emission, so
	// allow a small tolerance on containment.
	const eps = 0.01
	return op.BBox.Llx >= region.Llx-eps && op.BBox.Lly >= region.Lly-eps &&
		op.BBox.Urx <= region.Urx+eps && op.BBox.Ury <= region.Ury+eps
}

func isBlackFill(components []float64) bool {
	const eps = 1e-6
	switch len(components) {
	case 1, 3: // DeviceGray, DeviceRGB.
		for _, c := range components {
			if c > eps {
				return false
			}
		}
		return true
	case 4: // DeviceCMYK.
		return components[0] <= eps && components[1] <= eps &&
			components[2] <= eps && components[3] >= 1-eps
	}
	return false
}

// snapshotStreams copies the page's content stream blobs so they can be
// restored if anything fails after replacement begins.
func snapshotStreams(page model.PageHandle) [][]byte {
	blobs := page.ContentStreams()
	out := make([][]byte, len(blobs))
	for i, b := range blobs {
		out[i] = bytes.Clone(b)
	}
	return out
}

// joinStreams concatenates content stream blobs with newline
// separators, the page's complete content program.
func joinStreams(blobs [][]byte) []byte {
	return bytes.Join(blobs, []byte("\n"))
}

// restoreStreams reinstalls the captured original blobs, undoing a
// failed redaction at the page level.
func restoreStreams(page model.PageHandle, originals [][]byte) {
	if len(originals) == 0 {
		return
	}
	page.ReplaceContentStreams(originals[0])
	for _, blob := range originals[1:] {
		page.AppendContentStream(blob)
	}
}

// confirmationMark returns the content stream fragment of the visible
// black rectangle drawn over a redacted region.
func confirmationMark(r model.PdfRectangle) []byte {
	return []byte(fmt.Sprintf("q\n0 0 0 rg\n%s %s %s %s re\nf\nQ\n",
		formatCoord(r.Llx), formatCoord(r.Lly),
		formatCoord(r.Width()), formatCoord(r.Height())))
}

// formatCoord formats a coordinate with up to 4 decimals, trailing
// zeros trimmed, integers without a decimal point.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" || s == "" {
		s = "0"
	}
	return s
}
