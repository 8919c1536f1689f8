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

package ambient

import (
	"strings"
	"testing"
)

const sampleProfile = `
Pressure   O3        NO2
10000      1.2e12    5.0e8
20000      8.0e11    3.0e8
30000      4.0e11    1.0e8
`

func TestValueAtInterpolates(t *testing.T) {
	prof, err := Parse(strings.NewReader(sampleProfile))
	if err != nil {
		t.Fatal(err)
	}
	v, err := prof.ValueAt("O3", 15000)
	if err != nil {
		t.Fatal(err)
	}
	want := (1.2e12 + 8.0e11) / 2
	if diff := v - want; diff > 1e6 || diff < -1e6 {
		t.Errorf("ValueAt(O3, 15000) = %g, want %g", v, want)
	}
}

func TestValueAtClampsOutsideRange(t *testing.T) {
	prof, err := Parse(strings.NewReader(sampleProfile))
	if err != nil {
		t.Fatal(err)
	}
	below, err := prof.ValueAt("NO2", 1000)
	if err != nil {
		t.Fatal(err)
	}
	if below != 5.0e8 {
		t.Errorf("ValueAt below range = %g, want clamped value 5e8", below)
	}
	above, err := prof.ValueAt("NO2", 100000)
	if err != nil {
		t.Fatal(err)
	}
	if above != 1.0e8 {
		t.Errorf("ValueAt above range = %g, want clamped value 1e8", above)
	}
}

func TestValueAtUnknownColumn(t *testing.T) {
	prof, err := Parse(strings.NewReader(sampleProfile))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := prof.ValueAt("CH4", 15000); err == nil {
		t.Error("expected an error for an unknown column")
	}
}

func TestParseRejectsUnsortedPressure(t *testing.T) {
	bad := "Pressure O3\n20000 1.0\n10000 2.0\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("expected an error for a non-ascending pressure column")
	}
}

func TestParseRejectsBadHeader(t *testing.T) {
	bad := "Altitude O3\n100 1.0\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("expected an error when the first column isn't Pressure")
	}
}

func TestParseRejectsColumnCountMismatch(t *testing.T) {
	bad := "Pressure O3 NO2\n10000 1.0\n"
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("expected an error for a row with the wrong column count")
	}
}
