/*
Copyright © 2024 the APCEMM authors.
This file is part of APCEMM.

APCEMM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

APCEMM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with APCEMM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package config reads the run-directory menu file: a plain-text format
// organized into bracketed sections, each holding "label : value" lines.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// Section names recognized in the menu file.
const (
	SectionSimulation  = "SIMULATION"
	SectionSweep       = "PARAMETER SWEEP"
	SectionTransport   = "TRANSPORT"
	SectionChemistry   = "CHEMISTRY"
	SectionAerosol     = "AEROSOL"
	SectionMeteorology = "METEOROLOGY"
	SectionTimeseries  = "TIMESERIES"
)

// Menu is the parsed run configuration: a label->value map per section.
type Menu struct {
	sections map[string]map[string]string
	order    []string
}

// Get returns the raw string value of label within section, or ok=false.
func (m *Menu) Get(section, label string) (string, bool) {
	sec, ok := m.sections[section]
	if !ok {
		return "", false
	}
	v, ok := sec[label]
	return v, ok
}

// Bool coerces label's value to a bool. The menu format spells booleans
// "T"/"F" rather than Go's "true"/"false", so they are normalized first.
func (m *Menu) Bool(section, label string) (bool, error) {
	v, ok := m.Get(section, label)
	if !ok {
		return false, fmt.Errorf("config: missing %s/%s", section, label)
	}
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "T", "TRUE":
		return true, nil
	case "F", "FALSE":
		return false, nil
	}
	return cast.ToBoolE(v)
}

// Float64 coerces label's value to a float64.
func (m *Menu) Float64(section, label string) (float64, error) {
	v, ok := m.Get(section, label)
	if !ok {
		return 0, fmt.Errorf("config: missing %s/%s", section, label)
	}
	return cast.ToFloat64E(v)
}

// Int coerces label's value to an int.
func (m *Menu) Int(section, label string) (int, error) {
	v, ok := m.Get(section, label)
	if !ok {
		return 0, fmt.Errorf("config: missing %s/%s", section, label)
	}
	return cast.ToIntE(v)
}

// String returns label's raw value.
func (m *Menu) String(section, label string) (string, error) {
	v, ok := m.Get(section, label)
	if !ok {
		return "", fmt.Errorf("config: missing %s/%s", section, label)
	}
	return v, nil
}

// Range is a scalar parameter sweep specification: either an explicit list
// of values, or a start:step:end triple expanded into a list.
type Range struct {
	Values []float64
}

// FloatRange parses label's value as a parameter-sweep range: either a
// space-separated list ("1 2 3"), or a colon-delimited start:step:end
// triple expanded to a list, or (for Monte Carlo sections) a "min max" /
// "min:max" bound pair left as a 2-element list for the caller to sample
// from.
func (m *Menu) FloatRange(section, label string) (Range, error) {
	v, ok := m.Get(section, label)
	if !ok {
		return Range{}, fmt.Errorf("config: missing %s/%s", section, label)
	}
	v = strings.TrimSpace(v)
	if strings.Contains(v, ":") {
		parts := strings.Split(v, ":")
		nums := make([]float64, len(parts))
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return Range{}, fmt.Errorf("config: %s/%s: invalid range component %q: %w", section, label, p, err)
			}
			nums[i] = f
		}
		if len(nums) == 3 {
			start, step, end := nums[0], nums[1], nums[2]
			if step == 0 {
				return Range{}, fmt.Errorf("config: %s/%s: zero step", section, label)
			}
			var values []float64
			for x := start; (step > 0 && x <= end) || (step < 0 && x >= end); x += step {
				values = append(values, x)
			}
			return Range{Values: values}, nil
		}
		return Range{Values: nums}, nil
	}
	fields := strings.Fields(v)
	values := make([]float64, len(fields))
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Range{}, fmt.Errorf("config: %s/%s: invalid value %q: %w", section, label, f, err)
		}
		values[i] = val
	}
	return Range{Values: values}, nil
}

// Load parses the menu file at path.
func Load(path string) (*Menu, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a menu document from r. Lines beginning with '#' or '%' are
// comments. A line of the form "[SECTION NAME]" opens a new section;
// every subsequent "label : value" line belongs to it until the next
// section header.
func Parse(r io.Reader) (*Menu, error) {
	m := &Menu{sections: map[string]map[string]string{}}
	scanner := bufio.NewScanner(r)
	current := ""
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "%") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			if _, ok := m.sections[current]; !ok {
				m.sections[current] = map[string]string{}
				m.order = append(m.order, current)
			}
			continue
		}
		if current == "" {
			return nil, fmt.Errorf("config: line %d: value outside any section", lineNo)
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			return nil, fmt.Errorf("config: line %d: expected \"label : value\"", lineNo)
		}
		label := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		m.sections[current][label] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: scanning: %w", err)
	}
	return m, nil
}
