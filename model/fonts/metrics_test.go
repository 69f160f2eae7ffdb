/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package fonts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscura-pdf/obscura/model"
)

// stubPage implements model.PageHandle with a fixed font table.
type stubPage struct {
	fonts map[string]*model.FontDescriptor
}

func (p *stubPage) MediaBox() (float64, float64)      { return 612, 792 }
func (p *stubPage) Rotation() int                     { return 0 }
func (p *stubPage) ContentStreams() [][]byte          { return nil }
func (p *stubPage) ReplaceContentStreams(data []byte) {}
func (p *stubPage) AppendContentStream(data []byte)   {}
func (p *stubPage) ImageXObject(name string) bool     { return false }

func (p *stubPage) FontDescriptor(name string) (*model.FontDescriptor, bool) {
	d, ok := p.fonts[name]
	return d, ok
}

func TestStandardFontMetrics(t *testing.T) {
	m, ok := stdFontMetrics("Helvetica")
	require.True(t, ok)
	assert.Equal(t, 718.0, m.Ascent)
	assert.Equal(t, -207.0, m.Descent)
	assert.Equal(t, 278.0, m.WidthOf(' '))
	assert.Equal(t, 667.0, m.WidthOf('A'))
	assert.Equal(t, 556.0, m.WidthOf('a'))

	// Substitutes and styled variants resolve to the same tables.
	alias, ok := stdFontMetrics("ArialMT")
	require.True(t, ok)
	assert.Equal(t, m.WidthOf('A'), alias.WidthOf('A'))

	oblique, ok := stdFontMetrics("Helvetica-Oblique")
	require.True(t, ok)
	assert.Equal(t, m.WidthOf('W'), oblique.WidthOf('W'))

	courier, ok := stdFontMetrics("Courier-Bold")
	require.True(t, ok)
	assert.Equal(t, 600.0, courier.WidthOf('i'))
	assert.Equal(t, 600.0, courier.WidthOf('W'))

	_, ok = stdFontMetrics("NoSuchFont-12")
	assert.False(t, ok)
}

func TestMetricsFromDescriptorWidths(t *testing.T) {
	page := &stubPage{fonts: map[string]*model.FontDescriptor{
		"F1": {
			BaseFont:     "Custom",
			Ascent:       800,
			Descent:      -180,
			FirstChar:    65,
			Widths:       []float64{600, 650, 700},
			MissingWidth: 450,
		},
	}}

	p := NewProvider()
	m := p.MetricsFor("F1", page)
	require.NotNil(t, m)
	assert.False(t, m.Fallback)
	assert.Equal(t, 800.0, m.Ascent)
	assert.Equal(t, -180.0, m.Descent)
	assert.Equal(t, 600.0, m.WidthOf('A'))
	assert.Equal(t, 650.0, m.WidthOf('B'))
	assert.Equal(t, 700.0, m.WidthOf('C'))
	// Codes outside the widths array fall back to MissingWidth.
	assert.Equal(t, 450.0, m.WidthOf('D'))
}

func TestMetricsStandardBaseFont(t *testing.T) {
	// Descriptor without numeric fields: resolved via the base name.
	page := &stubPage{fonts: map[string]*model.FontDescriptor{
		"F1": {BaseFont: "Helvetica"},
	}}

	p := NewProvider()
	m := p.MetricsFor("F1", page)
	assert.False(t, m.Fallback)
	assert.Equal(t, 718.0, m.Ascent)
	assert.Equal(t, 667.0, m.WidthOf('A'))
}

func TestMetricsSubsetPrefix(t *testing.T) {
	page := &stubPage{fonts: map[string]*model.FontDescriptor{
		"F1": {BaseFont: "OPEIOA+Helvetica"},
	}}

	p := NewProvider()
	m := p.MetricsFor("F1", page)
	assert.False(t, m.Fallback)
	assert.Equal(t, 718.0, m.Ascent)
}

func TestMetricsFallback(t *testing.T) {
	page := &stubPage{fonts: map[string]*model.FontDescriptor{}}

	p := NewProvider()
	p.DisableSystemFonts = true
	m := p.MetricsFor("F9", page)
	assert.True(t, m.Fallback)
	assert.Equal(t, float64(FallbackAscent), m.Ascent)
	assert.Equal(t, float64(FallbackDescent), m.Descent)
	assert.Equal(t, float64(FallbackWidth), m.WidthOf('A'))
}

func TestMetricsCached(t *testing.T) {
	page := &stubPage{fonts: map[string]*model.FontDescriptor{
		"F1": {BaseFont: "Times-Roman"},
	}}

	p := NewProvider()
	m1 := p.MetricsFor("F1", page)
	m2 := p.MetricsFor("F1", page)
	assert.Same(t, m1, m2)
}

func TestTrimSubsetPrefix(t *testing.T) {
	assert.Equal(t, "ArialMT", trimSubsetPrefix("OPEIOA+ArialMT"))
	assert.Equal(t, "Arial", trimSubsetPrefix("Arial"))
	// Lowercase tag is not a subset prefix.
	assert.Equal(t, "abcdef+Arial", trimSubsetPrefix("abcdef+Arial"))
}
