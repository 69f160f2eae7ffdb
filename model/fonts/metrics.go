/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package fonts resolves glyph metrics for fonts named in a page's
// resource dictionary. Metrics are expressed in 1000-unit glyph space
// and feed the text bounding box calculation of the content stream
// processor.
package fonts

import (
	"strings"
	"sync"

	"github.com/adrg/sysfont"

	"github.com/obscura-pdf/obscura/common"
	"github.com/obscura-pdf/obscura/model"
)

// Fallback metrics applied when a font cannot be resolved at all. The
// values are oversized relative to most real fonts, which is the safe
// direction for redaction bounds.
const (
	FallbackAscent  = 750
	FallbackDescent = -250
	FallbackWidth   = 500
)

// FontMetrics holds the vertical extent and per-code advance widths of a
// font in 1000-unit glyph space.
type FontMetrics struct {
	Ascent  float64
	Descent float64

	// DefaultWidth is the advance used for codes with no explicit width.
	DefaultWidth float64

	// Fallback is set when the conservative fallback profile was applied.
	Fallback bool

	widths    [256]float64
	hasWidths [256]bool
}

// WidthOf returns the advance width for byte code `code`.
func (m *FontMetrics) WidthOf(code byte) float64 {
	if m.hasWidths[code] {
		return m.widths[code]
	}
	return m.DefaultWidth
}

// SetWidth sets the advance width for byte code `code`.
func (m *FontMetrics) SetWidth(code byte, width float64) {
	m.widths[code] = width
	m.hasWidths[code] = true
}

// fallbackMetrics returns the conservative fallback profile.
func fallbackMetrics() *FontMetrics {
	return &FontMetrics{
		Ascent:       FallbackAscent,
		Descent:      FallbackDescent,
		DefaultWidth: FallbackWidth,
		Fallback:     true,
	}
}

// Provider resolves FontMetrics for fonts named in page resources.
//
// Resolution order:
//  1. the descriptor supplied by the host library (embedded TrueType
//     program parsed when numeric fields are missing),
//  2. the built-in standard 14 tables, keyed by base name,
//  3. a system font located by name,
//  4. the conservative fallback profile.
//
// A Provider is pure for a given (name, page) pair and caches results,
// so it may be shared across redaction calls on the same page. The cache
// is safe for concurrent use.
type Provider struct {
	// DisableSystemFonts turns off the system font lookup step, for
	// callers that need resolution independent of the host machine.
	DisableSystemFonts bool

	mu     sync.Mutex
	cache  map[string]*FontMetrics
	finder *sysfont.Finder
}

// NewProvider returns an empty metrics provider.
func NewProvider() *Provider {
	return &Provider{
		cache: map[string]*FontMetrics{},
	}
}

// MetricsFor resolves the metrics of font `name` on `page`. It never
// fails: when every resolution step misses, the fallback profile is
// returned with Fallback set.
func (p *Provider) MetricsFor(name string, page model.PageHandle) *FontMetrics {
	p.mu.Lock()
	if m, ok := p.cache[name]; ok {
		p.mu.Unlock()
		return m
	}
	p.mu.Unlock()

	m := p.resolve(name, page)

	p.mu.Lock()
	p.cache[name] = m
	p.mu.Unlock()
	return m
}

func (p *Provider) resolve(name string, page model.PageHandle) *FontMetrics {
	descriptor, ok := page.FontDescriptor(name)
	if !ok {
		common.Log.Debug("No descriptor for font %q, trying built-in tables", name)
		return p.resolveByName(name)
	}

	base := trimSubsetPrefix(descriptor.BaseFont)

	m := &FontMetrics{
		Ascent:       descriptor.Ascent,
		Descent:      descriptor.Descent,
		DefaultWidth: descriptor.MissingWidth,
	}
	for i, w := range descriptor.Widths {
		code := descriptor.FirstChar + i
		if code < 0 || code > 255 {
			continue
		}
		m.SetWidth(byte(code), w)
	}

	if m.Ascent == 0 && m.Descent == 0 {
		// The descriptor carries no vertical metrics. Try the embedded
		// font program, then the built-in and system tables.
		if tt := metricsFromTrueType(descriptor.FontFile2); tt != nil {
			m.Ascent, m.Descent = tt.Ascent, tt.Descent
			if len(descriptor.Widths) == 0 {
				return tt
			}
		} else if named := p.resolveByName(base); !named.Fallback {
			m.Ascent, m.Descent = named.Ascent, named.Descent
			if len(descriptor.Widths) == 0 {
				return named
			}
		} else {
			m.Ascent, m.Descent = FallbackAscent, FallbackDescent
			m.Fallback = true
		}
	}
	if m.DefaultWidth == 0 {
		m.DefaultWidth = FallbackWidth
	}
	return m
}

// resolveByName resolves metrics without a descriptor: standard 14
// tables first, then a system font lookup.
func (p *Provider) resolveByName(name string) *FontMetrics {
	base := trimSubsetPrefix(name)
	if m, ok := stdFontMetrics(base); ok {
		return m
	}
	if m := p.systemFontMetrics(base); m != nil {
		return m
	}
	common.Log.Debug("Font %q unresolved, applying fallback metrics", name)
	return fallbackMetrics()
}

// systemFontMetrics locates an installed font matching `name` and reads
// its metrics. Returns nil when no usable match is found.
func (p *Provider) systemFontMetrics(name string) *FontMetrics {
	if p.DisableSystemFonts {
		return nil
	}
	if p.finder == nil {
		p.finder = sysfont.NewFinder(&sysfont.FinderOpts{
			Extensions: []string{".ttf", ".ttc"},
		})
	}
	info := p.finder.Match(name)
	if info == nil {
		common.Log.Debug("No system font match for %q", name)
		return nil
	}
	m, err := metricsFromTrueTypeFile(info.Filename)
	if err != nil {
		common.Log.Debug("Could not load system font %s: %v", info.Filename, err)
		return nil
	}
	common.Log.Debug("Substituting font %q with %s (%s)", name, info.Name, info.Filename)
	return m
}

// trimSubsetPrefix removes the 6-letter subset tag from names such as
// "OPEIOA+ArialMT".
func trimSubsetPrefix(name string) string {
	if len(name) > 7 && name[6] == '+' {
		allUpper := true
		for _, r := range name[:6] {
			if r < 'A' || r > 'Z' {
				allUpper = false
				break
			}
		}
		if allUpper {
			return name[7:]
		}
	}
	return name
}

// normalizeName lowercases and strips separators so alias lookups are
// tolerant of "Times New Roman" vs "TimesNewRoman" style names.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case ' ', '-', '_', ',':
			continue
		}
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
