package lib

import (
	"testing"
)

func TestCheck(t *testing.T) {
	tests := []struct{
		mode Mode
		args Args
		valid bool
	} {
		{ HelpMode, Args{ }, true },
		{ ListMode, Args{ }, false },
		{ ListMode, Args{ Input: "SPE9.INIT" }, true },
		{ CheckMode, Args{ Input: "SPE9.UNRST" }, true },
		{ ListMode, Args{ Input: "SPE9.INIT", Threads: -2 }, false },

		{ PrintMode, Args{ Input: "SPE9.UNRST", Steps: []int{ 37 } }, true },
		{ PrintMode, Args{ Input: "SPE9.INIT", Steps: []int{ 37 } }, false },
		{ PrintMode, Args{ Input: "SPE9.UNRST", Output: "{%03d,step}.txt" },
			true },
		{ PrintMode, Args{ Input: "SPE9.INIT", Output: "{%03d,step}.txt" },
			false },
		{ PrintMode, Args{ Input: "SPE9.INIT", Output: "{%03d,step" },
			false },
		{ PrintMode, Args{ Input: "SPE9.INIT", Output: "init.txt" }, true },

		{ SummaryMode, Args{ Input: "SPE9.SMSPEC", Keys: []string{ "F*" } },
			true },
		{ SummaryMode, Args{ Input: "SPE9.ESMRY", Keys: []string{ "F*" } },
			true },
		{ SummaryMode, Args{ Input: "SPE9.SMSPEC" }, false },
		{ SummaryMode, Args{ Input: "SPE9.UNSMRY", Keys: []string{ "F*" } },
			false },
		{ SummaryMode, Args{ Input: "SPE9.SMSPEC", Keys: []string{ "F*" },
			Times: []float64{ 1 }, TimesFile: "times.txt" }, false },

		{ ESMRYMode, Args{ Input: "SPE9.SMSPEC" }, true },
		{ ESMRYMode, Args{ Input: "SPE9.FSMSPEC" }, true },
		{ ESMRYMode, Args{ Input: "SPE9.ESMRY" }, false },

		{ GridMode, Args{ Input: "SPE9.EGRID" }, true },
		{ GridMode, Args{ Input: "SPE9.INIT" }, false },

		{ VolumesMode, Args{ Input: "SPE9.INIT", Grid: "SPE9.EGRID",
			Restart: "SPE9.UNRST", ReportStep: 37 }, true },
		{ VolumesMode, Args{ Input: "SPE9.EGRID" }, false },
		{ VolumesMode, Args{ Input: "SPE9.INIT", Grid: "SPE9.UNRST" }, false },
		{ VolumesMode, Args{ Input: "SPE9.INIT", Restart: "SPE9.EGRID" },
			false },
		{ VolumesMode, Args{ Input: "SPE9.INIT", ReportStep: 37 }, false },

		{ ConvertMode, Args{ Input: "SPE9.INIT", Output: "SPE9.FINIT" }, true },
		{ ConvertMode, Args{ Input: "SPE9.INIT" }, false },
		{ ConvertMode, Args{ Input: "SPE9.INIT", Output: "./SPE9.INIT" },
			false },
		{ ConvertMode, Args{ Input: "SPE9.INIT", Output: "{%d,step}.INIT" },
			false },
	}

	for i := range tests {
		err := Check(tests[i].mode, &tests[i].args)
		if tests[i].valid && err != nil {
			t.Errorf("%d) Expected %s mode to accept %+v, got %s.", i,
				tests[i].mode, tests[i].args, err.Error())
		} else if !tests[i].valid && err == nil {
			t.Errorf("%d) Expected %s mode to reject %+v, got no error.", i,
				tests[i].mode, tests[i].args)
		}
	}
}

func TestParseMode(t *testing.T) {
	for i, name := range modeNames {
		mode, err := ParseMode(name)
		if err != nil || int(mode) != i || mode.String() != name {
			t.Errorf("%d) Expected mode '%s' to round trip, got %d, %v.",
				i, name, mode, err)
		}
	}
	if _, err := ParseMode("confirm"); err == nil {
		t.Errorf("Expected an error for mode 'confirm', got none.")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct{
		path string
		kind FileKind
	} {
		{ "SPE9.UNRST", RestartFile },
		{ "dir/spe9.funrst", RestartFile },
		{ "SPE9.SMSPEC", SummaryFile },
		{ "SPE9.FSMSPEC", SummaryFile },
		{ "SPE9.ESMRY", SummaryFile },
		{ "SPE9.EGRID", GridFile },
		{ "SPE9.FEGRID", GridFile },
		{ "SPE9.INIT", InitFile },
		{ "SPE9.FINIT", InitFile },
		{ "SPE1.RFT", RFTFile },
		{ "spe1.frft", RFTFile },
		{ "SPE9.X0001", OtherFile },
		{ "SPE9", OtherFile },
		{ "run.d/SPE9", OtherFile },
	}

	for i := range tests {
		if kind := KindOf(tests[i].path); kind != tests[i].kind {
			t.Errorf("%d) Expected '%s' to be a %s, got %s.", i,
				tests[i].path, tests[i].kind, kind)
		}
	}
}
