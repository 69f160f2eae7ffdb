/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package model

// FontDescriptor carries the metric information the host PDF library has
// resolved for a font named in a page's resource dictionary. All metric
// fields are in 1000-unit glyph space. Fields the host could not resolve
// are left at zero; FontFile2 holds the decoded embedded TrueType program
// when one is present.
type FontDescriptor struct {
	BaseFont     string
	Ascent       float64
	Descent      float64
	FirstChar    int
	Widths       []float64
	MissingWidth float64
	FontFile2    []byte
}

// PageHandle is the engine's view of a single page of the host PDF
// library. The handle exposes mutable content-stream storage, the page
// geometry and the font entries of the resource dictionary. The engine
// owns the handle exclusively for the duration of a redaction call.
type PageHandle interface {
	// MediaBox returns the unrotated page width and height in points.
	MediaBox() (width, height float64)

	// Rotation returns the page rotation: one of 0, 90, 180, 270.
	Rotation() int

	// ContentStreams returns the page's decoded content stream blobs.
	// Their concatenation is the page's content program.
	ContentStreams() [][]byte

	// ReplaceContentStreams discards the existing blobs and installs
	// `data` as the page's single content stream.
	ReplaceContentStreams(data []byte)

	// AppendContentStream adds `data` as an additional content stream
	// blob after the existing ones.
	AppendContentStream(data []byte)

	// FontDescriptor returns the descriptor for font `name` from the
	// page's resource dictionary, or false when the font is unknown.
	FontDescriptor(name string) (*FontDescriptor, bool)

	// ImageXObject reports whether XObject `name` in the page's resource
	// dictionary is an image. Form XObjects and unknown names return
	// false and are passed through untouched by the engine.
	ImageXObject(name string) bool
}
