/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package core

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStringNumbers(t *testing.T) {
	assert.Equal(t, "5", MakeInteger(5).WriteString())
	assert.Equal(t, "-32", MakeInteger(-32).WriteString())
	assert.Equal(t, "3.14", MakeFloat(3.14).WriteString())
	assert.Equal(t, "-0.5", MakeFloat(-0.5).WriteString())
}

func TestWriteStringStrings(t *testing.T) {
	assert.Equal(t, "(Hello)", MakeString("Hello").WriteString())
	assert.Equal(t, `(a\(b\)c)`, MakeString("a(b)c").WriteString())
	assert.Equal(t, `(line\nnext)`, MakeString("line\nnext").WriteString())
	assert.Equal(t, `(back\\slash)`, MakeString(`back\slash`).WriteString())

	// Hex strings keep their hex form.
	assert.Equal(t, "<48656c6c6f>", MakeHexString("Hello").WriteString())
	assert.True(t, MakeHexString("x").IsHex())
}

func TestWriteStringNames(t *testing.T) {
	assert.Equal(t, "/Name1", MakeName("Name1").WriteString())
	// Delimiters and non-printables are hex escaped.
	assert.Equal(t, "/A#23B", MakeName("A#B").WriteString())
	assert.Equal(t, "/Pa#28ren", MakeName("Pa(ren").WriteString())
}

func TestWriteStringArrayDict(t *testing.T) {
	arr := MakeArray(MakeInteger(1), MakeFloat(2.5), MakeName("X"))
	assert.Equal(t, "[1 2.5 /X]", arr.WriteString())

	d := MakeDict()
	d.Set("W", MakeInteger(902))
	d.Set("H", MakeInteger(1))
	assert.Equal(t, "<</W 902/H 1>>", d.WriteString())

	assert.Equal(t, "true", MakeBool(true).WriteString())
	assert.Equal(t, "null", MakeNull().WriteString())
}

func TestParseNumber(t *testing.T) {
	testcases := []struct {
		raw      string
		expected float64
		isFloat  bool
	}{
		{"0", 0, false},
		{"42", 42, false},
		{"-13", -13, false},
		{"+17", 17, false},
		{"3.25", 3.25, true},
		{".5", 0.5, true},
		{"-.002", -0.002, true},
		{"123.", 123, true},
		{"6.02e2", 602, true},
	}

	for _, tc := range testcases {
		reader := bufio.NewReader(bytes.NewBufferString(tc.raw + " "))
		obj, n, err := ParseNumber(reader)
		require.NoError(t, err, tc.raw)
		assert.Equal(t, len(tc.raw), n)

		val, err := GetNumberAsFloat(obj)
		require.NoError(t, err)
		assert.InDelta(t, tc.expected, val, 1e-9, tc.raw)

		_, isFloat := obj.(*PdfObjectFloat)
		assert.Equal(t, tc.isFloat, isFloat, tc.raw)
	}
}

func TestParseNumberMalformed(t *testing.T) {
	reader := bufio.NewReader(bytes.NewBufferString("4.5.6 "))
	_, _, err := ParseNumber(reader)
	assert.Error(t, err)
}

func TestGetNumbersAsFloat(t *testing.T) {
	vals, err := GetNumbersAsFloat([]PdfObject{MakeInteger(1), MakeFloat(2.5)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, vals)

	_, err = GetNumbersAsFloat([]PdfObject{MakeName("NaN")})
	assert.ErrorIs(t, err, ErrNotANumber)
}
