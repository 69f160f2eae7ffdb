/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"errors"
)

// Errors when parsing/loading primitives from content streams.
var (
	// ErrNotANumber is returned when a numeric value was expected.
	ErrNotANumber = errors.New("not a number")

	// ErrTypeError is returned when an object is of the wrong type.
	ErrTypeError = errors.New("type check error")
)
