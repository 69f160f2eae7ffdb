/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obscura-pdf/obscura/model"
)

func TestVerifyStreamFindsResidualText(t *testing.T) {
	page := newMemPage(twoTextsContent)
	region := model.NewPdfRectangle(90, 690, 230, 715)

	report, err := verifyStream([]byte(twoTextsContent), region, page)
	require.NoError(t, err)

	require.Len(t, report.Residual, 1)
	run := report.Residual[0]
	assert.Equal(t, "CONFIDENTIAL", run.Text)
	assert.Equal(t, "F1", run.FontName)
	assert.Equal(t, 12.0, run.FontSize)
	assert.True(t, run.BBox.Intersects(region))
	assert.False(t, report.Passed())
}

func TestVerifyStreamPassesOutsideRegion(t *testing.T) {
	page := newMemPage(twoTextsContent)
	region := model.NewPdfRectangle(400, 400, 500, 450)

	report, err := verifyStream([]byte(twoTextsContent), region, page)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Residual)
}

func TestVerifyStreamIgnoresNonText(t *testing.T) {
	page := newMemPage("")
	region := model.NewPdfRectangle(0, 0, 300, 300)

	// A filled path inside the region is not residual text.
	report, err := verifyStream([]byte("50 100 200 80 re\nf\n"), region, page)
	require.NoError(t, err)
	assert.True(t, report.Passed())
}

func TestVerifyStreamMalformed(t *testing.T) {
	page := newMemPage("")
	region := model.NewPdfRectangle(0, 0, 100, 100)

	_, err := verifyStream([]byte("BT\n(open"), region, page)
	assert.Error(t, err)
}
