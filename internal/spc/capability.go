package spc

import (
	"fmt"

	"github.com/KaramelBytes/qip-spc-cli/internal/stats"
	"github.com/KaramelBytes/qip-spc-cli/internal/workbook"
)

// Capability holds short-term (within) and long-term (overall) indices.
// An index is nil when its sigma is zero; it is never NaN or infinite.
type Capability struct {
	Cp         *float64 `json:"cp"`
	Cpu        *float64 `json:"cpu"`
	Cpl        *float64 `json:"cpl"`
	Cpk        *float64 `json:"cpk"`
	Pp         *float64 `json:"pp"`
	Ppu        *float64 `json:"ppu"`
	Ppl        *float64 `json:"ppl"`
	Ppk        *float64 `json:"ppk"`
	SigmaLevel *float64 `json:"sigma_level"`
	DPMO       *float64 `json:"dpmo"`
}

func ratio(num, den float64) *float64 {
	if !(den > 0) {
		return nil
	}
	v := num / den
	if !stats.Finite(v) {
		return nil
	}
	return &v
}

func minOf(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a
	if *b < v {
		v = *b
	}
	return &v
}

// ComputeCapability derives the indices for a process with the given mean
// and sigmas. Missing limits return nil and a note; USL <= LSL is computed
// but noted.
func ComputeCapability(mean, within, overall float64, sp workbook.Specs) (*Capability, []string) {
	if !sp.HasLimits() {
		return nil, []string{fmt.Sprintf("capability unavailable: %v (USL and LSL are required)", workbook.ErrInvalidSpecs)}
	}
	var notes []string
	usl, lsl := *sp.USL, *sp.LSL
	if usl <= lsl {
		notes = append(notes, fmt.Sprintf("USL (%g) is not above LSL (%g); capability indices are not meaningful", usl, lsl))
	}
	tol := usl - lsl
	c := &Capability{
		Cp:  ratio(tol, 6*within),
		Cpu: ratio(usl-mean, 3*within),
		Cpl: ratio(mean-lsl, 3*within),
		Pp:  ratio(tol, 6*overall),
		Ppu: ratio(usl-mean, 3*overall),
		Ppl: ratio(mean-lsl, 3*overall),
	}
	c.Cpk = minOf(c.Cpu, c.Cpl)
	c.Ppk = minOf(c.Ppu, c.Ppl)
	if c.Cpk != nil {
		sl := 3 * *c.Cpk
		dpmo := stats.TwoSidedTail(sl) * 1e6
		c.SigmaLevel, c.DPMO = &sl, &dpmo
	}
	if c.Cpk == nil {
		notes = append(notes, "within sigma is zero; Cp/Cpk are undefined")
	}
	if c.Ppk == nil {
		notes = append(notes, "overall sigma is zero; Pp/Ppk are undefined")
	}
	return c, notes
}
