/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package common

import (
	"time"
)

const releaseYear = 2026
const releaseMonth = 6
const releaseDay = 11
const releaseHour = 10
const releaseMin = 30

// Version holds version information, when bumping this make sure to bump the released at stamp also.
const Version = "1.4.0"

var ReleasedAt = time.Date(releaseYear, releaseMonth, releaseDay, releaseHour, releaseMin, 0, 0, time.UTC)
