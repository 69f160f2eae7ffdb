/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

// RedactionMode describes the outcome of a redaction call.
type RedactionMode int

// Redaction outcomes. The engine never downgrades a failure to a
// visual-only mark; the caller decides how to surface NoContent and
// Failed.
const (
	// RedactionModeTrueRedaction means intersecting content was removed
	// from the content streams and verification passed.
	RedactionModeTrueRedaction RedactionMode = iota

	// RedactionModeNoContent means the region contained no removable
	// content. The page is unchanged, except that an engine configured
	// to allow visual-only marks appends a confirmation mark.
	RedactionModeNoContent

	// RedactionModeFailed means the call failed (malformed stream,
	// unbalanced state or verifier disagreement). The page was left, or
	// rolled back to, its original state.
	RedactionModeFailed
)

// String returns a human readable mode name.
func (m RedactionMode) String() string {
	switch m {
	case RedactionModeTrueRedaction:
		return "TrueRedaction"
	case RedactionModeNoContent:
		return "NoContent"
	case RedactionModeFailed:
		return "Failed"
	}
	return "Unknown"
}

// RedactionResult reports what a redaction call did to a page.
type RedactionResult struct {
	Mode RedactionMode

	// Removal counters by operation category.
	TextOpsRemoved  int
	PathOpsRemoved  int
	ImageOpsRemoved int

	// RegionPoints is the redaction region in PDF user space.
	RegionPoints PdfRectangle

	// UsedFallbackMetrics is set when one or more fonts could not be
	// resolved and conservative fallback metrics were applied.
	UsedFallbackMetrics bool
}
