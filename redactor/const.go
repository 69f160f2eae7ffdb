/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redactor

import (
	"errors"
)

// Fatal redaction errors. A fatal error leaves the page in (or rolled
// back to) its original state; the engine never downgrades one to a
// visual-only mark.
var (
	// ErrMalformedStream is returned when the page's content stream
	// cannot be parsed.
	ErrMalformedStream = errors.New("malformed content stream")

	// ErrUnbalancedState is returned when the content stream ends with
	// unbalanced q/Q or BT/ET pairs.
	ErrUnbalancedState = errors.New("unbalanced interpreter state")

	// ErrVerifierDisagreement is returned when text from the removed
	// set is still recoverable from the rewritten stream. The page is
	// rolled back.
	ErrVerifierDisagreement = errors.New("verifier found residual text in region")
)
