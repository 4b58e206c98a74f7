// Package column implements the column driver (spec §4.9, L9): it maps a
// user-facing column list to the raw-measurement slots those columns need,
// then, once L7/L8 have filled the raw vectors, materializes final column
// values into an output table.
package column

import (
	"errors"

	stgpsr "github.com/yuin/stagparser"

	mkcore "github.com/go-astro/mkcore"
	"github.com/go-astro/mkcore/measure"
)

// Kind enumerates the column categories spec §3 names.
type Kind int

const (
	KindIdentifier Kind = iota
	KindArea
	KindCenter
	KindBrightness
	KindMorphology
	KindUpperLimit
	KindSigmaClip
	KindSpectrumSlice
	KindSurfaceBrightness
	KindWorldCoordinate
)

// Target says whether a column is emitted for the object table, the clump
// table, or both.
type Target int

const (
	TargetObject Target = iota
	TargetClump
	TargetBoth
)

// Column is one requested output column: a kind, a target subsystem, a
// data type, a unit, and the raw-measurement need-flags it pulls from
// (spec §3 "Column set").
type Column struct {
	Name        string
	Kind        Kind
	Target      Target
	Unit        string
	Description string
	Need        measure.Flags
	Args        map[string]string
}

var kindByName = map[string]Kind{
	"LABEL":              KindIdentifier,
	"HOST_OBJECT_ID":     KindIdentifier,
	"SUB_LABEL":          KindIdentifier,
	"NUM_SUB_LABELS":     KindIdentifier,
	"AREA":               KindArea,
	"CENTER":             KindCenter,
	"BRIGHTNESS":         KindBrightness,
	"BRIGHTNESS_ERR":     KindBrightness,
	"MAGNITUDE":          KindBrightness,
	"MAGNITUDE_ERR":      KindBrightness,
	"SN":                 KindBrightness,
	"MORPHOLOGY":         KindMorphology,
	"SEMIMAJOR":          KindMorphology,
	"SEMIMINOR":          KindMorphology,
	"POSITIONANGLE":      KindMorphology,
	"UPPERLIMIT":         KindUpperLimit,
	"SIGMACLIP":          KindSigmaClip,
	"MEDIAN":             KindSigmaClip,
	"SPECTRUM":           KindSpectrumSlice,
	"SURFACEBRIGHTNESS":  KindSurfaceBrightness,
	"RA":                 KindWorldCoordinate,
	"DEC":                KindWorldCoordinate,
	"WORLDCENTER":        KindWorldCoordinate,
	"CLUMPSGEOZ":         KindMorphology,
}

// ParseColumnList parses the user-facing column-list string
// ("BRIGHTNESS(zeropoint=25.0),AREA,MORPHOLOGY") into an ordered column
// set. Each top-level comma-separated entry is one stagparser Definition;
// the definition name is the column kind keyword and its attributes are
// the column's Args, the same grammar the teacher drives TileDB attribute
// construction with (schema.go), applied here to a plain string instead of
// a struct tag.
func ParseColumnList(s string) ([]Column, error) {
	defs, err := stgpsr.Parse(s)
	if err != nil {
		return nil, mkcore.NewContractError("ParseColumnList", err)
	}

	cols := make([]Column, 0, len(defs))
	for _, def := range defs {
		name := def.Name()
		kind, ok := kindByName[name]
		if !ok {
			return nil, mkcore.NewContractError("ParseColumnList", errors.New("unknown column kind: "+name))
		}
		col := Column{Name: name, Kind: kind, Target: TargetObject, Args: map[string]string{}}
		for _, argName := range knownArgs[name] {
			if v, ok := def.Attribute(argName); ok {
				col.Args[argName] = v
			}
		}
		col.Need = needFlagsFor(col)
		cols = append(cols, col)
	}
	return cols, nil
}

// knownArgs lists the attribute names each column kind accepts, so
// ParseColumnList only copies attributes the kind actually recognizes.
var knownArgs = map[string][]string{
	"BRIGHTNESS":        {"zeropoint"},
	"BRIGHTNESS_ERR":    {"zeropoint"},
	"MAGNITUDE":         {"zeropoint"},
	"MAGNITUDE_ERR":     {"zeropoint", "cps_corr"},
	"SN":                {"zeropoint", "cps_corr"},
	"SURFACEBRIGHTNESS": {"nsigma", "area"},
	"SPECTRUM":          {"slice"},
}

// needFlagsFor returns the disjunction of raw-measurement slots column c
// requires (spec §3/§4.9 "a raw-measurement slot is read only if its
// need-flag is set by at least one requested column").
func needFlagsFor(c Column) measure.Flags {
	var f measure.Flags
	switch c.Kind {
	case KindIdentifier:
		// identity columns read label bookkeeping, not raw slots.
	case KindArea:
		f.Set(measure.NumAll)
		f.Set(measure.Num)
		f.Set(measure.NumAllXY)
		f.Set(measure.NumXY)
		for d := 0; d < 3; d++ {
			f.Set(measure.CoordMinSlot(d))
			f.Set(measure.CoordMaxSlot(d))
		}
	case KindCenter, KindWorldCoordinate:
		f.Set(measure.SumWht)
		f.Set(measure.NumAll)
		for d := 0; d < 3; d++ {
			f.Set(measure.VAxis(d))
			f.Set(measure.SumCoordSlot(d))
			f.Set(measure.CoordMinSlot(d))
			f.Set(measure.CoordMaxSlot(d))
		}
	case KindBrightness, KindSurfaceBrightness:
		f.Set(measure.SumValue)
		f.Set(measure.SumVar)
		f.Set(measure.Num)
		f.Set(measure.NumAll)
		f.Set(measure.RiverSum)
		f.Set(measure.RiverArea)
	case KindMorphology:
		f.Set(measure.SumWht)
		f.Set(measure.Vxx)
		f.Set(measure.Vyy)
		f.Set(measure.Vxy)
		f.Set(measure.VAxis0)
		f.Set(measure.VAxis1)
		f.Set(measure.VAxis2)
		f.Set(measure.Shift0)
		f.Set(measure.Shift1)
		f.Set(measure.Shift2)
	case KindUpperLimit:
		f.Set(measure.ULSigmaClipped)
		f.Set(measure.ULBrightness)
		f.Set(measure.ULQuantile)
		f.Set(measure.ULSkewness)
		f.Set(measure.ULAccepted)
	case KindSigmaClip:
		f.Set(measure.SigmaClipN)
		f.Set(measure.SigmaClipMean)
		f.Set(measure.SigmaClipMedian)
		f.Set(measure.SigmaClipStd)
	case KindSpectrumSlice:
		// spectrum rows are a side table, not raw-vector slots.
	}
	return f
}

// UnionNeeds folds every column's Need flags into one disjunction (spec
// §4.9 "before measurement": the pass-1/2/3 kernels only compute what at
// least one requested column consumes).
func UnionNeeds(cols []Column) measure.Flags {
	var f measure.Flags
	for _, c := range cols {
		f = f.Union(c.Need)
	}
	return f
}
