/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package contentstream

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/obscura-pdf/obscura/common"
	"github.com/obscura-pdf/obscura/core"
)

// ContentStreamParser parses a page content stream into an ordered
// operation list. Every input byte is accounted for: recognized
// operators become typed operations, inline images are captured raw,
// and unrecognized operators are preserved with their operands.
type ContentStreamParser struct {
	reader *bufio.Reader
	pos    int
}

// NewContentStreamParser creates a new instance of the content stream parser for
// input content stream bytes.
func NewContentStreamParser(content []byte) *ContentStreamParser {
	parser := ContentStreamParser{}

	// Add newline at end to get last operand without EOF error.
	buffer := bytes.NewBuffer(append(bytes.Clone(content), '\n'))
	parser.reader = bufio.NewReader(buffer)

	return &parser
}

// Parse parses all commands in the content stream, returning the operation list.
// A malformed stream yields an error annotated with the byte offset; the parser
// performs no recovery that would silently drop operators.
func (csp *ContentStreamParser) Parse() (Operations, error) {
	operations := Operations{}

	for {
		operation := Operation{}

		for {
			obj, isOperand, err := csp.parseObject()
			if err != nil {
				if err == io.EOF {
					// End of data. Successful exit point.
					return operations, nil
				}
				return operations, xerrors.Errorf("content stream parse error at offset %d: %w", csp.pos, err)
			}
			if isOperand {
				operation.Operand = obj.(*core.PdfObjectName).String()
				operations = append(operations, &operation)
				break
			}
			operation.Params = append(operation.Params, obj)
		}

		if operation.Operand == "BI" {
			// An inline image: capture everything through the closing EI
			// verbatim, so the segment round-trips byte for byte.
			raw, err := csp.readInlineImage()
			if err != nil {
				return operations, xerrors.Errorf("inline image at offset %d: %w", csp.pos, err)
			}
			operation.RawData = raw
			operation.Kind = KindPassthrough
		}
	}
}

// readByte consumes one byte, tracking the stream offset.
func (csp *ContentStreamParser) readByte() (byte, error) {
	b, err := csp.reader.ReadByte()
	if err == nil {
		csp.pos++
	}
	return b, err
}

// discard skips n bytes, tracking the stream offset.
func (csp *ContentStreamParser) discard(n int) (int, error) {
	cnt, err := csp.reader.Discard(n)
	csp.pos += cnt
	return cnt, err
}

// skipSpaces skips over any spaces. Returns the number of spaces skipped.
func (csp *ContentStreamParser) skipSpaces() (int, error) {
	cnt := 0
	for {
		bb, err := csp.reader.Peek(1)
		if err != nil {
			return cnt, err
		}
		if core.IsWhiteSpace(bb[0]) {
			csp.readByte()
			cnt++
		} else {
			break
		}
	}

	return cnt, nil
}

// skipComments skips over comments and spaces. Can handle multi-line comments.
func (csp *ContentStreamParser) skipComments() error {
	if _, err := csp.skipSpaces(); err != nil {
		return err
	}

	isFirst := true
	for {
		bb, err := csp.reader.Peek(1)
		if err != nil {
			common.Log.Debug("Error %s", err.Error())
			return err
		}
		if isFirst && bb[0] != '%' {
			// Not a comment clearly.
			return nil
		}
		isFirst = false

		if (bb[0] != '\r') && (bb[0] != '\n') {
			csp.readByte()
		} else {
			break
		}
	}

	// Call recursively to handle multiline comments.
	return csp.skipComments()
}

// parseName parses a name starting with '/'.
func (csp *ContentStreamParser) parseName() (core.PdfObjectName, error) {
	name := ""
	nameStarted := false
	for {
		bb, err := csp.reader.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return core.PdfObjectName(name), err
		}

		if !nameStarted {
			// Should always start with '/', otherwise not valid.
			if bb[0] == '/' {
				nameStarted = true
				csp.readByte()
			} else {
				common.Log.Error("Name starting with %s (% x)", bb, bb)
				return core.PdfObjectName(name), xerrors.Errorf("invalid name: (%c)", bb[0])
			}
		} else {
			if core.IsWhiteSpace(bb[0]) {
				break
			} else if (bb[0] == '/') || (bb[0] == '[') || (bb[0] == '(') || (bb[0] == ']') || (bb[0] == '<') || (bb[0] == '>') {
				break // Looks like start of next statement.
			} else if bb[0] == '#' {
				hexcode, err := csp.reader.Peek(3)
				if err != nil {
					return core.PdfObjectName(name), err
				}
				csp.discard(3)

				code, err := hex.DecodeString(string(hexcode[1:3]))
				if err != nil {
					return core.PdfObjectName(name), xerrors.Errorf("invalid name hex escape: %w", err)
				}
				name += string(code)
			} else {
				b, _ := csp.readByte()
				name += string(b)
			}
		}
	}
	return core.PdfObjectName(name), nil
}

// parseNumber parses an integer or real number.
func (csp *ContentStreamParser) parseNumber() (core.PdfObject, error) {
	obj, n, err := core.ParseNumber(csp.reader)
	csp.pos += n
	return obj, err
}

// parseString parses a literal string, starting with '(' and ending with ')'.
func (csp *ContentStreamParser) parseString() (*core.PdfObjectString, error) {
	csp.readByte()

	var out []byte
	count := 1
	for {
		bb, err := csp.reader.Peek(1)
		if err != nil {
			return core.MakeString(string(out)), xerrors.New("unterminated literal string")
		}

		if bb[0] == '\\' { // Escape sequence.
			csp.readByte() // Skip the escape \ byte.
			b, err := csp.readByte()
			if err != nil {
				return core.MakeString(string(out)), xerrors.New("unterminated literal string")
			}

			// Octal '\ddd' number (base 8).
			if core.IsOctalDigit(b) {
				bb, err := csp.reader.Peek(2)
				if err != nil {
					return core.MakeString(string(out)), err
				}

				var numeric []byte
				numeric = append(numeric, b)
				for _, val := range bb {
					if core.IsOctalDigit(val) {
						numeric = append(numeric, val)
					} else {
						break
					}
				}
				csp.discard(len(numeric) - 1)

				code, err := strconv.ParseUint(string(numeric), 8, 32)
				if err != nil {
					return core.MakeString(string(out)), xerrors.Errorf("invalid octal escape: %w", err)
				}
				out = append(out, byte(code))
				continue
			}

			switch b {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '(':
				out = append(out, '(')
			case ')':
				out = append(out, ')')
			case '\\':
				out = append(out, '\\')
			}

			continue
		} else if bb[0] == '(' {
			count++
		} else if bb[0] == ')' {
			count--
			if count == 0 {
				csp.readByte()
				break
			}
		}

		b, _ := csp.readByte()
		out = append(out, b)
	}

	return core.MakeString(string(out)), nil
}

// parseHexString parses a string starting with '<' and ending with '>'.
func (csp *ContentStreamParser) parseHexString() (*core.PdfObjectString, error) {
	csp.readByte()

	hextable := []byte("0123456789abcdefABCDEF")

	var tmp []byte
	for {
		csp.skipSpaces()

		bb, err := csp.reader.Peek(1)
		if err != nil {
			return core.MakeHexString(""), xerrors.New("unterminated hex string")
		}

		if bb[0] == '>' {
			csp.readByte()
			break
		}

		b, _ := csp.readByte()
		if bytes.IndexByte(hextable, b) >= 0 {
			tmp = append(tmp, b)
		} else {
			return core.MakeHexString(""), xerrors.Errorf("invalid hex string character %q", b)
		}
	}

	if len(tmp)%2 == 1 {
		tmp = append(tmp, '0')
	}

	buf, _ := hex.DecodeString(string(tmp))
	return core.MakeHexString(string(buf)), nil
}

// parseArray parses an array starting with '[' and ending with ']'.
// Can contain any kind of direct object.
func (csp *ContentStreamParser) parseArray() (*core.PdfObjectArray, error) {
	arr := core.MakeArray()

	csp.readByte()

	for {
		csp.skipSpaces()

		bb, err := csp.reader.Peek(1)
		if err != nil {
			return arr, xerrors.New("unterminated array")
		}

		if bb[0] == ']' {
			csp.readByte()
			break
		}

		obj, _, err := csp.parseObject()
		if err != nil {
			return arr, err
		}
		arr.Append(obj)
	}

	return arr, nil
}

// parseBool parses a boolean object.
func (csp *ContentStreamParser) parseBool() (core.PdfObjectBool, error) {
	bb, err := csp.reader.Peek(4)
	if err != nil {
		return core.PdfObjectBool(false), err
	}
	if (len(bb) >= 4) && (string(bb[:4]) == "true") {
		csp.discard(4)
		return core.PdfObjectBool(true), nil
	}

	bb, err = csp.reader.Peek(5)
	if err != nil {
		return core.PdfObjectBool(false), err
	}
	if (len(bb) >= 5) && (string(bb[:5]) == "false") {
		csp.discard(5)
		return core.PdfObjectBool(false), nil
	}

	return core.PdfObjectBool(false), xerrors.New("unexpected boolean string")
}

// parseNull parses a null object.
func (csp *ContentStreamParser) parseNull() (core.PdfObjectNull, error) {
	_, err := csp.discard(4)
	return core.PdfObjectNull{}, err
}

// parseDict parses a dictionary starting with '<<' and ending with '>>'.
func (csp *ContentStreamParser) parseDict() (*core.PdfObjectDictionary, error) {
	dict := core.MakeDict()

	// Pass the '<<'
	c, _ := csp.readByte()
	if c != '<' {
		return nil, xerrors.New("invalid dict")
	}
	c, _ = csp.readByte()
	if c != '<' {
		return nil, xerrors.New("invalid dict")
	}

	for {
		csp.skipSpaces()

		bb, err := csp.reader.Peek(2)
		if err != nil {
			return nil, xerrors.New("unterminated dictionary")
		}

		if (bb[0] == '>') && (bb[1] == '>') {
			csp.readByte()
			csp.readByte()
			break
		}

		keyName, err := csp.parseName()
		if err != nil {
			common.Log.Debug("ERROR Returning name err %s", err)
			return nil, err
		}

		csp.skipSpaces()

		val, _, err := csp.parseObject()
		if err != nil {
			return nil, err
		}
		dict.Set(keyName, val)
	}

	return dict, nil
}

// parseOperand parses an operand: a text command represented by a word.
func (csp *ContentStreamParser) parseOperand() (*core.PdfObjectName, error) {
	var out []byte
	for {
		bb, err := csp.reader.Peek(1)
		if err != nil {
			return core.MakeName(string(out)), err
		}
		if core.IsDelimiter(bb[0]) || core.IsWhiteSpace(bb[0]) {
			break
		}

		b, _ := csp.readByte()
		out = append(out, b)
	}

	return core.MakeName(string(out)), nil
}

// parseObject parses a generic object. Returns the object, an error code, and a bool
// value indicating whether the object is an operand.
func (csp *ContentStreamParser) parseObject() (obj core.PdfObject, isop bool, err error) {
	csp.skipSpaces()
	for {
		bb, err := csp.reader.Peek(2)
		if err != nil {
			return nil, false, err
		}

		if bb[0] == '%' {
			csp.skipComments()
			continue
		} else if bb[0] == '/' {
			name, err := csp.parseName()
			return &name, false, err
		} else if bb[0] == '(' {
			str, err := csp.parseString()
			return str, false, err
		} else if bb[0] == '<' && bb[1] != '<' {
			str, err := csp.parseHexString()
			return str, false, err
		} else if bb[0] == '<' && bb[1] == '<' {
			dict, err := csp.parseDict()
			return dict, false, err
		} else if bb[0] == '[' {
			arr, err := csp.parseArray()
			return arr, false, err
		} else if core.IsFloatDigit(bb[0]) || (bb[0] == '-' && core.IsFloatDigit(bb[1])) ||
			(bb[0] == '+' && core.IsFloatDigit(bb[1])) {
			number, err := csp.parseNumber()
			return number, false, err
		} else {
			// Otherwise can be: keyword such as "null", "false", "true" or an operand.
			bb, _ = csp.reader.Peek(5)
			peekStr := string(bb)

			if (len(peekStr) > 3) && (peekStr[:4] == "null") {
				null, err := csp.parseNull()
				return &null, false, err
			} else if (len(peekStr) > 4) && (peekStr[:5] == "false") {
				b, err := csp.parseBool()
				return &b, false, err
			} else if (len(peekStr) > 3) && (peekStr[:4] == "true") {
				b, err := csp.parseBool()
				return &b, false, err
			}

			operand, err := csp.parseOperand()
			if err != nil {
				return operand, false, err
			}
			if len(operand.String()) < 1 {
				return operand, false, ErrInvalidOperand
			}
			return operand, true, nil
		}
	}
}

// readInlineImage captures the raw bytes of an inline image, from just
// after the BI operand through the closing EI inclusive. The bytes are
// not interpreted; they re-serialize verbatim.
func (csp *ContentStreamParser) readInlineImage() ([]byte, error) {
	var raw []byte
	for {
		b, err := csp.readByte()
		if err != nil {
			return nil, xerrors.New("unterminated inline image")
		}
		raw = append(raw, b)

		// EI terminates the image when delimited by whitespace.
		n := len(raw)
		if n >= 3 && raw[n-2] == 'E' && raw[n-1] == 'I' && core.IsWhiteSpace(raw[n-3]) {
			bb, err := csp.reader.Peek(1)
			if err == io.EOF || (err == nil && core.IsWhiteSpace(bb[0])) {
				return raw, nil
			}
		}
	}
}
