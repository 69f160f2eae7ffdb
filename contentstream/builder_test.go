/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rebuild(t *testing.T, content string, drop func(*Operation) bool) []byte {
	t.Helper()
	ops, err := NewContentStreamParser([]byte(content)).Parse()
	require.NoError(t, err)

	var kept Operations
	for _, op := range ops {
		if drop != nil && drop(op) {
			continue
		}
		kept = append(kept, op)
	}
	return NewContentStreamBuilder(kept).Build()
}

func TestBuildRoundTrip(t *testing.T) {
	content := "q\n1 0 0 1 50 60 cm\n0 0 1 rg\n10 10 100 50 re\nf\nQ\n"
	out := rebuild(t, content, nil)
	assert.Equal(t, content, string(out))
}

func TestBuildDeterministic(t *testing.T) {
	content := "q\nBT\n/F1 12 Tf\n(Hi) Tj\nET\nQ\n"
	a := rebuild(t, content, nil)
	b := rebuild(t, content, nil)
	assert.True(t, bytes.Equal(a, b))
}

func TestBuildOperatorFaithfulness(t *testing.T) {
	content := "BT\n/F1 12 Tf\n[(A) -120 (B)] TJ\n(C) Tj\n(D) '\n1 2 (E) \"\nET\n"
	out := string(rebuild(t, content, nil))

	assert.Contains(t, out, "[(A) -120 (B)] TJ\n")
	assert.Contains(t, out, "(C) Tj\n")
	assert.Contains(t, out, "(D) '\n")
	assert.Contains(t, out, "1 2 (E) \"\n")
}

func TestBuildPreservesStringForm(t *testing.T) {
	content := "BT\n/F1 12 Tf\n<4142> Tj\n(CD) Tj\nET\n"
	out := string(rebuild(t, content, nil))

	// Hex stays hex, literal stays literal.
	assert.Contains(t, out, "<4142> Tj\n")
	assert.Contains(t, out, "(CD) Tj\n")
}

func TestBuildElidesEmptyTextObject(t *testing.T) {
	content := "q\nBT\n/F1 12 Tf\n100 700 Td\n(Secret) Tj\nET\nQ\nBT\n/F1 12 Tf\n(Keep) Tj\nET\n"
	out := string(rebuild(t, content, func(op *Operation) bool {
		if op.Operand != "Tj" {
			return false
		}
		str := op.Params[0].WriteString()
		return strings.Contains(str, "Secret")
	}))

	// The first text object lost its only showing op: the whole group
	// (BT, Tf, Td, ET) is gone, but the surrounding q/Q remain.
	assert.NotContains(t, out, "Secret")
	assert.NotContains(t, out, "700 Td")
	assert.Contains(t, out, "(Keep) Tj\n")
	assert.Equal(t, 1, strings.Count(out, "BT\n"))
	assert.Equal(t, 1, strings.Count(out, "ET\n"))
	assert.Equal(t, strings.Count(out, "q\n"), strings.Count(out, "Q\n"))
}

func TestBuildKeepsGroupWithForeignOps(t *testing.T) {
	// A BT group holding a cm is not elided even when its text is gone:
	// dropping the cm would change state after the group.
	content := "BT\n2 0 0 2 0 0 cm\n/F1 12 Tf\n(Gone) Tj\nET\n"
	out := string(rebuild(t, content, func(op *Operation) bool {
		return op.Operand == "Tj"
	}))

	assert.Contains(t, out, "BT\n")
	assert.Contains(t, out, "cm\n")
	assert.Contains(t, out, "ET\n")
	assert.NotContains(t, out, "Gone")
}

func TestBuildBalance(t *testing.T) {
	content := "q\nq\nBT\n/F1 8 Tf\n(x) Tj\nET\nQ\nQ\n"
	out := string(rebuild(t, content, func(op *Operation) bool {
		return op.Operand == "Tj"
	}))

	assert.Equal(t, strings.Count(out, "q\n"), strings.Count(out, "Q\n"))
	assert.Equal(t, strings.Count(out, "BT\n"), strings.Count(out, "ET\n"))
	assert.NotContains(t, out, "ET\nQ\nQ\nET")
}
