package workbook

// Specs are the engineering thresholds of one inspection item, read from
// row 1, columns 1-3 (target, USL, LSL). A missing or non-numeric cell
// leaves the field nil.
type Specs struct {
	Target   *float64 `json:"target"`
	USL      *float64 `json:"usl"`
	LSL      *float64 `json:"lsl"`
	Decimals int      `json:"decimals"`
}

// HasLimits reports whether both USL and LSL are present.
func (s Specs) HasLimits() bool {
	return s.USL != nil && s.LSL != nil
}

// Tolerance is USL-LSL, or 0 when a limit is missing.
func (s Specs) Tolerance() float64 {
	if !s.HasLimits() {
		return 0
	}
	return *s.USL - *s.LSL
}

const (
	specRow      = 1
	targetColumn = 1
	uslColumn    = 2
	lslColumn    = 3
)

// Specs reads the spec cells. Decimals holds the largest precision found
// in the cells, 0 if none has a fractional part.
func (w *Workbook) Specs(name string) (Specs, error) {
	s, err := w.Sheet(name)
	if err != nil {
		return Specs{}, err
	}
	var sp Specs
	cells := []struct {
		col int
		dst **float64
	}{
		{targetColumn, &sp.Target},
		{uslColumn, &sp.USL},
		{lslColumn, &sp.LSL},
	}
	for _, c := range cells {
		raw := s.cell(specRow, c.col)
		v, ok := ParseNumeric(raw, w.opt)
		if !ok {
			continue
		}
		*c.dst = &v
		if p := Precision(raw, w.opt); p > sp.Decimals {
			sp.Decimals = p
		}
	}
	return sp, nil
}
