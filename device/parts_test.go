package device

import "testing"

func TestParsePartName(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		wantErr bool
		want    PartSpec
	}{
		{"small device ok", "XC2C32A-6VQ44", false, PartSpec{XC2C32A, 6, VQ44}},
		{"large device ok", "XC2C256-7TQ144", false, PartSpec{XC2C256, 7, TQ144}},
		{"speed not offered", "XC2C128-4VQ100", true, PartSpec{}},
		{"package not offered", "XC2C512-7VQ44", true, PartSpec{}},
		{"garbage", "not-a-part", true, PartSpec{}},
		{"missing dash", "XC2C32A6VQ44", true, PartSpec{}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParsePartName(c.in)
			if c.wantErr {
				if err == nil {
					t.Fatalf("ParsePartName(%q) = %v, want error", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePartName(%q) unexpected error: %v", c.in, err)
			}
			if got != c.want {
				t.Fatalf("ParsePartName(%q) = %+v, want %+v", c.in, got, c.want)
			}
		})
	}
}

func TestLayoutForAnchors(t *testing.T) {
	l32a := LayoutFor(XC2C32A)
	if l32a.LogicalFuseCount != 12278 {
		t.Errorf("XC2C32A logical fuse count = %d, want 12278", l32a.LogicalFuseCount)
	}

	l512 := LayoutFor(XC2C512)
	if l512.LogicalFuseCount != 296403 {
		t.Errorf("XC2C512 logical fuse count = %d, want 296403", l512.LogicalFuseCount)
	}
	if l512.PhysicalWidth != 1980 || l512.PhysicalHeight != 162 {
		t.Errorf("XC2C512 physical dims = %dx%d, want 1980x162", l512.PhysicalWidth, l512.PhysicalHeight)
	}

	l32 := LayoutFor(XC2C32)
	if l32.PhysicalWidth != 260 || l32.PhysicalHeight != 50 {
		t.Errorf("XC2C32 physical dims = %dx%d, want 260x50", l32.PhysicalWidth, l32.PhysicalHeight)
	}
}

func TestZIATableWidths(t *testing.T) {
	for _, d := range All() {
		table := BuildZIATable(d)
		f := FactsFor(d)
		if len(table) != f.NumFBs {
			t.Fatalf("%s: ZIA table has %d FBs, want %d", d, len(table), f.NumFBs)
		}
		for fb, rows := range table {
			for row, choices := range rows {
				if len(choices) < 6 || len(choices) > 8 {
					t.Errorf("%s FB%d row%d: %d choices, want 6-8", d, fb, row, len(choices))
				}
				seen := map[ZIASource]bool{}
				for _, c := range choices {
					if seen[c] {
						t.Errorf("%s FB%d row%d: duplicate choice %v", d, fb, row, c)
					}
					seen[c] = true
				}
			}
		}
	}
}
