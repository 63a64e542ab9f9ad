package bake

import (
	"testing"
)

func TestFormatRowsAligned(t *testing.T) {
	got := formatRows([][]int{{1, 2, 3}, {-4, 5, 6}}, "int16_t")
	expected := "  1, 2, 3,\n  -4, 5, 6,"
	if got != expected {
		t.Errorf("formatRows() = %q; expected %q", got, expected)
	}
}

func TestFormatRowsPads16BitToEven(t *testing.T) {
	got := formatRows([][]int{{1, 2, 3}}, "int16_t")
	expected := "  1, 2, 3,\n#if defined(__x86_64__) || defined(__i386__)\n  0,\n#endif"
	if got != expected {
		t.Errorf("formatRows() = %q; expected %q", got, expected)
	}
}

func TestFormatRows8BitPadding(t *testing.T) {
	for _, test := range []struct {
		total int
		zeros int
	}{
		{1, 3}, {2, 2}, {3, 1}, {4, 0}, {5, 3}, {8, 0},
	} {
		row := make([]int, test.total)
		got := formatRows([][]int{row}, "uint8_t")
		if test.zeros == 0 {
			if got[len(got)-1] != ',' {
				t.Errorf("total %d: expected no padding block, got %q", test.total, got)
			}
		} else {
			expectedTail := "#endif"
			if got[len(got)-len(expectedTail):] != expectedTail {
				t.Errorf("total %d: expected padding block, got %q", test.total, got)
			}
		}
	}
}

func TestFormatRows8BitPadCounts(t *testing.T) {
	got := formatRows([][]int{{9}}, "uint8_t")
	expected := "  9,\n#if defined(__x86_64__) || defined(__i386__)\n  0, 0, 0,\n#endif"
	if got != expected {
		t.Errorf("formatRows() = %q; expected %q", got, expected)
	}
}

func TestFormatRowsWideTypesNeverPad(t *testing.T) {
	got := formatRows([][]int{{7}}, "uint32_t")
	expected := "  7,"
	if got != expected {
		t.Errorf("formatRows() = %q; expected %q", got, expected)
	}
}

func TestFormatRowsEmpty(t *testing.T) {
	if got := formatRows(nil, "int16_t"); got != "" {
		t.Errorf("formatRows(nil) = %q; expected empty", got)
	}
}

func TestFormatRowsUnknownTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on unknown data type")
		}
	}()
	formatRows([][]int{{1}}, "size_t")
}
