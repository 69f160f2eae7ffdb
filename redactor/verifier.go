/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redactor

import (
	"golang.org/x/xerrors"

	"github.com/obscura-pdf/obscura/contentstream"
	"github.com/obscura-pdf/obscura/model"
	"github.com/obscura-pdf/obscura/model/fonts"
)

// GlyphRun describes a text-showing operation found by the verifier,
// for diagnostic reporting.
type GlyphRun struct {
	Text     string
	FontName string
	FontSize float64
	BBox     model.PdfRectangle
}

// VerifierReport is the outcome of checking a rewritten content stream
// against a redaction region.
type VerifierReport struct {
	// Residual lists the glyph runs whose bounding boxes intersect the
	// region. Empty on a successful redaction.
	Residual []GlyphRun

	// RegionPoints is the checked region in PDF user space.
	RegionPoints model.PdfRectangle
}

// Passed returns true when no glyph run intersects the region.
func (r *VerifierReport) Passed() bool {
	return len(r.Residual) == 0
}

// verifyStream re-parses `data`, recomputes the bounding box of every
// text-showing operation and reports the runs still intersecting
// `region`. The check is independent of the filtering pass: it trusts
// only the rewritten bytes.
func verifyStream(data []byte, region model.PdfRectangle, page model.PageHandle) (*VerifierReport, error) {
	ops, err := contentstream.NewContentStreamParser(data).Parse()
	if err != nil {
		return nil, xerrors.Errorf("verifier parse: %w", err)
	}

	proc := contentstream.NewContentStreamProcessor(ops, fonts.NewProvider())
	if err := proc.Process(page); err != nil {
		return nil, xerrors.Errorf("verifier process: %w", err)
	}

	report := &VerifierReport{RegionPoints: region}
	for _, op := range ops {
		if op.Kind != contentstream.KindText || op.BBox == nil {
			continue
		}
		if op.BBox.Intersects(region) {
			report.Residual = append(report.Residual, GlyphRun{
				Text:     string(op.Text),
				FontName: op.FontName,
				FontSize: op.FontSize,
				BBox:     *op.BBox,
			})
		}
	}
	return report, nil
}
