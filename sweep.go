package apcemm

import "fmt"

// SweepAxis is one parameter varied across a sweep, e.g. ambient
// temperature or fuel sulfur content.
type SweepAxis struct {
	Name   string
	Values []float64
}

// SweepCase is one fully resolved combination of sweep-axis values, keyed
// by axis name.
type SweepCase struct {
	Index  int
	Values map[string]float64
}

// ExpandSweep builds the full Cartesian product of every axis's values, so
// the driver can run the core simulation once per case.
func ExpandSweep(axes []SweepAxis) ([]SweepCase, error) {
	for _, a := range axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("apcemm: sweep axis %q has no values", a.Name)
		}
	}
	cases := []SweepCase{{Index: 0, Values: map[string]float64{}}}
	for _, axis := range axes {
		var next []SweepCase
		for _, c := range cases {
			for _, v := range axis.Values {
				values := make(map[string]float64, len(c.Values)+1)
				for k, vv := range c.Values {
					values[k] = vv
				}
				values[axis.Name] = v
				next = append(next, SweepCase{Values: values})
			}
		}
		cases = next
	}
	for i := range cases {
		cases[i].Index = i
	}
	return cases, nil
}

// RunSweep invokes run once per expanded case, in order, stopping at the
// first case whose run returns a non-OK status.
func RunSweep(axes []SweepAxis, run func(SweepCase) (Status, error)) ([]Status, error) {
	cases, err := ExpandSweep(axes)
	if err != nil {
		return nil, err
	}
	statuses := make([]Status, 0, len(cases))
	for _, c := range cases {
		st, err := run(c)
		statuses = append(statuses, st)
		if err != nil {
			return statuses, fmt.Errorf("apcemm: sweep case %d: %w", c.Index, err)
		}
		if st != StatusOK {
			return statuses, nil
		}
	}
	return statuses, nil
}
