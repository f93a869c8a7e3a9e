// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package weather

import (
	"math"
	"time"
)

// synodicDays is the mean length of a lunation.
const synodicDays = 29.530588853

// moonEpoch is a reference new moon, 2000-01-06 18:14 UTC.
var moonEpoch = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// moonPhase names the lunar phase at t. Good to within a day, which is
// all a dashboard needs.
func moonPhase(t time.Time) string {
	days := t.Sub(moonEpoch).Hours() / 24
	frac := math.Mod(days/synodicDays, 1)
	if frac < 0 {
		frac++
	}
	switch {
	case frac < 0.0625 || frac >= 0.9375:
		return "New Moon"
	case frac < 0.1875:
		return "Waxing Crescent"
	case frac < 0.3125:
		return "First Quarter"
	case frac < 0.4375:
		return "Waxing Gibbous"
	case frac < 0.5625:
		return "Full Moon"
	case frac < 0.6875:
		return "Waning Gibbous"
	case frac < 0.8125:
		return "Last Quarter"
	default:
		return "Waning Crescent"
	}
}
