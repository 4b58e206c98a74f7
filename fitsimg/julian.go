package fitsimg

import (
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	mkcore "github.com/go-astro/mkcore"
)

// ParseDateObs parses a FITS DATE-OBS string into a calendar time plus its
// Julian Date, grounded on go-gsf decode/params.go's parse_reftime (same
// library, same "parse an observation timestamp" role): DATE-OBS here is
// the modern ISO-8601 form ("2024-03-21T04:12:33.500"), rather than the
// sonar format's "yyyy/ddd hh:mm:ss", so the split-and-reassemble logic
// differs, but both end by handing (year, month, day) to
// julian.CalendarGregorianToJD.
func ParseDateObs(s string) (time.Time, float64, error) {
	datePart, timePart, _ := strings.Cut(s, "T")
	ymd := strings.Split(datePart, "-")
	if len(ymd) != 3 {
		return time.Time{}, 0, mkcore.NewRuntimeIOError("fitsimg.ParseDateObs", s, ErrBadDateObs)
	}
	year, err1 := strconv.Atoi(ymd[0])
	month, err2 := strconv.Atoi(ymd[1])
	day, err3 := strconv.Atoi(ymd[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, 0, mkcore.NewRuntimeIOError("fitsimg.ParseDateObs", s, ErrBadDateObs)
	}

	hour, min, sec, nsec := 0, 0, 0, 0
	if timePart != "" {
		hour, min, sec, nsec = parseClock(timePart)
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, nsec, time.UTC)

	dayFrac := float64(day) + (float64(hour)*3600+float64(min)*60+float64(sec)+float64(nsec)/1e9)/86400
	jd := julian.CalendarGregorianToJD(year, month, dayFrac)

	return t, jd, nil
}

func parseClock(s string) (hour, min, sec, nsec int) {
	parts := strings.Split(s, ":")
	if len(parts) > 0 {
		hour, _ = strconv.Atoi(parts[0])
	}
	if len(parts) > 1 {
		min, _ = strconv.Atoi(parts[1])
	}
	if len(parts) > 2 {
		secFloat, _ := strconv.ParseFloat(parts[2], 64)
		sec = int(secFloat)
		nsec = int((secFloat - float64(sec)) * 1e9)
	}
	return
}
