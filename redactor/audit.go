/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package redactor

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/obscura-pdf/obscura/model"
)

// newAuditLogger builds the mandatory audit sink. The logger is owned
// by the engine and pinned to InfoLevel; it is not reachable through
// the package logging configuration, so redaction outcomes cannot be
// silenced by log-level tuning.
func newAuditLogger(out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stderr
	}
	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: false,
		FullTimestamp:    true,
	})
	return logger
}

// audit emits the per-call record: one line per redaction attempt,
// whatever the outcome.
func (e *Engine) audit(result *model.RedactionResult) {
	e.auditLog.WithFields(logrus.Fields{
		"mode":          result.Mode.String(),
		"text_removed":  result.TextOpsRemoved,
		"path_removed":  result.PathOpsRemoved,
		"image_removed": result.ImageOpsRemoved,
	}).Info("redaction")
}
