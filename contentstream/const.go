/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"errors"
)

// Errors from parsing and processing content streams.
var (
	// ErrInvalidOperand is returned when an empty or malformed operand
	// token is encountered.
	ErrInvalidOperand = errors.New("invalid operand")

	// ErrUnbalancedState is returned when the stream ends with unclosed
	// q/Q save-restore pairs or an unterminated BT text object.
	ErrUnbalancedState = errors.New("unbalanced graphics or text state")

	// ErrInvalidParams is returned when an operator is given the wrong
	// number or type of parameters.
	ErrInvalidParams = errors.New("invalid operator parameters")
)
