package fitsimg

import "errors"

var ErrBadDateObs = errors.New("fitsimg: malformed DATE-OBS value")
