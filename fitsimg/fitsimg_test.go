package fitsimg

import (
	"testing"

	mkcore "github.com/go-astro/mkcore"
	"github.com/stretchr/testify/require"
)

func TestParseDateObsSplitsCalendarAndClock(t *testing.T) {
	tm, jd, err := ParseDateObs("2024-03-21T04:12:33.5")
	require.NoError(t, err)
	require.Equal(t, 2024, tm.Year())
	require.Equal(t, 3, int(tm.Month()))
	require.Equal(t, 21, tm.Day())
	require.Equal(t, 4, tm.Hour())
	require.Greater(t, jd, float64(2460000))
}

func TestParseDateObsRejectsMalformed(t *testing.T) {
	_, _, err := ParseDateObs("not-a-date")
	require.Error(t, err)
}

func TestLinearWCSRoundTrip(t *testing.T) {
	cards := LinearWCSCards{
		CRPIX1: 50, CRPIX2: 50,
		CRVAL1: 150.0, CRVAL2: -30.0,
		CD11: 0.0002, CD12: 0, CD21: 0, CD22: 0.0002,
	}
	w := LinearWCS{}
	world, err := w.ImgToWorld(cards, []mkcore.Point{{60, 55}})
	require.NoError(t, err)
	require.Len(t, world, 1)

	back, err := w.WorldToImg(cards, world)
	require.NoError(t, err)
	require.InDelta(t, 60, back[0][0], 1e-6)
	require.InDelta(t, 55, back[0][1], 1e-6)
}

func TestLinearWCSAlignedAxesRejectsWrongHandleType(t *testing.T) {
	w := LinearWCS{}
	require.False(t, w.AlignedAxes("not-cards"))
	require.True(t, w.AlignedAxes(LinearWCSCards{}))
}
