package utils

import "testing"

var exportNameTests = []struct {
	in  string
	out string
}{
	{"player", "player"},
	{"player.001", "player_001"},
	{"tower guard", "tower_guard"},
	{"g_ukko.002 left", "g_ukko_002_left"},
}

func TestToExportName(t *testing.T) {
	for _, test := range exportNameTests {
		if r := ToExportName(test.in); r != test.out {
			t.Errorf("ToExportName(%q)=%q; expected %q", test.in, r, test.out)
		}
	}
}

var headerGuardTests = []struct {
	in  string
	out string
}{
	{"model.hpp", "__model_hpp__"},
	{"/tmp/out/Ukko.HPP", "__ukko_hpp__"},
	{"mesh_data.h", "__mesh_data_h__"},
}

func TestHeaderGuardName(t *testing.T) {
	for _, test := range headerGuardTests {
		if r := HeaderGuardName(test.in); r != test.out {
			t.Errorf("HeaderGuardName(%q)=%q; expected %q", test.in, r, test.out)
		}
	}
}
