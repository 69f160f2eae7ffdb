/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package fonts

import (
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/xerrors"

	"github.com/obscura-pdf/obscura/common"
)

// metricsFromTrueType reads ascent/descent and printable-ASCII advance
// widths from a TrueType font program, scaled to 1000-unit glyph space.
// Returns nil when `data` is empty or unparseable.
func metricsFromTrueType(data []byte) *FontMetrics {
	if len(data) == 0 {
		return nil
	}
	m, err := parseTrueType(data)
	if err != nil {
		common.Log.Debug("Could not parse embedded font program: %v", err)
		return nil
	}
	return m
}

// metricsFromTrueTypeFile reads metrics from a font file on disk.
func metricsFromTrueTypeFile(path string) (*FontMetrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseTrueType(data)
}

func parseTrueType(data []byte) (*FontMetrics, error) {
	fnt, err := sfnt.Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("sfnt parse: %w", err)
	}

	var buf sfnt.Buffer

	// Requesting metrics at ppem = unitsPerEm yields values directly in
	// font units, which only need rescaling to 1000-unit glyph space.
	upem := float64(fnt.UnitsPerEm())
	if upem == 0 {
		return nil, xerrors.New("font has zero units per em")
	}
	ppem := fixed.I(int(fnt.UnitsPerEm()))
	scale := 1000.0 / upem

	fm, err := fnt.Metrics(&buf, ppem, font.HintingNone)
	if err != nil {
		return nil, xerrors.Errorf("font metrics: %w", err)
	}

	m := &FontMetrics{
		// sfnt reports descent as a positive distance below the baseline.
		Ascent:       fixedToFloat(fm.Ascent) * scale,
		Descent:      -fixedToFloat(fm.Descent) * scale,
		DefaultWidth: FallbackWidth,
	}

	for code := 32; code < 127; code++ {
		gi, err := fnt.GlyphIndex(&buf, rune(code))
		if err != nil || gi == 0 {
			continue
		}
		adv, err := fnt.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
		if err != nil {
			continue
		}
		m.SetWidth(byte(code), fixedToFloat(adv)*scale)
	}
	return m, nil
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
