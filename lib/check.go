package lib

/* check.go contains the validation run before every mode and the core of
eclio's "check" mode. */

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/phil-mansfield/eclio/lib/eclfile"
	"github.com/phil-mansfield/eclio/lib/format"
	"github.com/phil-mansfield/eclio/lib/logger"
)

// Check checks that args holds the variables needed by mode and that they
// make sense together. It does not open any files. Variables which mode
// ignores are reported as warnings.
func Check(mode Mode, args *Args) error {
	if mode == HelpMode { return nil }

	if args.Input == "" {
		return fmt.Errorf("The Input variable must be set in %s mode.", mode)
	}
	kind := KindOf(args.Input)

	if args.Threads < -1 {
		return fmt.Errorf("Threads is set to %d, but it must be positive, " +
			"0, or -1.", args.Threads)
	}

	var err error
	switch mode {
	case PrintMode:
		err = checkPrint(args, kind)
	case SummaryMode:
		err = requireKind(mode, args.Input, kind, SummaryFile)
		if err == nil && len(args.Keys) == 0 {
			err = fmt.Errorf("The Keys variable must be set in summary mode.")
		} else if err == nil && len(args.Times) > 0 && args.TimesFile != "" {
			err = fmt.Errorf("Times and TimesFile cannot both be set.")
		}
	case ESMRYMode:
		err = requireKind(mode, args.Input, kind, SummaryFile)
		ext := filepath.Ext(args.Input)
		if err == nil && strings.EqualFold(ext, ".ESMRY") {
			err = fmt.Errorf("Input is set to '%s', but esmry mode needs the " +
				"SMSPEC file the ESMRY file is built from.", args.Input)
		}
	case GridMode:
		err = requireKind(mode, args.Input, kind, GridFile)
	case VolumesMode:
		err = checkVolumes(args, kind)
	case ConvertMode:
		err = checkConvert(args)
	}
	if err != nil { return err }

	warnUnused(mode, args)
	return nil
}

func requireKind(mode Mode, path string, kind, want FileKind) error {
	if kind != want {
		return fmt.Errorf("%s mode needs Input to be a %s, but '%s' is a %s.",
			mode, want, path, kind)
	}
	return nil
}

func checkPrint(args *Args, kind FileKind) error {
	if kind != RestartFile && args.Steps != nil {
		return fmt.Errorf("Steps was set, but '%s' is a %s, and only " +
			"restart files have report steps.", args.Input, kind)
	}
	if args.Output == "" { return nil }

	ff, err := format.ParseFileFormat(args.Output)
	if err != nil { return err }
	if ff.HasVariables() && kind != RestartFile {
		return fmt.Errorf("Output, '%s', has a {step} variable, but '%s' is " +
			"a %s, and only restart files have report steps.", args.Output,
			args.Input, kind)
	}
	return nil
}

func checkVolumes(args *Args, kind FileKind) error {
	if err := requireKind(VolumesMode, args.Input, kind, InitFile); err != nil {
		return err
	}
	if args.Grid != "" && KindOf(args.Grid) != GridFile {
		return fmt.Errorf("Grid is set to '%s', which is a %s, not a %s.",
			args.Grid, KindOf(args.Grid), GridFile)
	}
	if args.Restart != "" && KindOf(args.Restart) != RestartFile {
		return fmt.Errorf("Restart is set to '%s', which is a %s, not a %s.",
			args.Restart, KindOf(args.Restart), RestartFile)
	}
	if args.ReportStep != 0 && args.Restart == "" {
		return fmt.Errorf("ReportStep was set without a Restart file.")
	}
	return nil
}

func checkConvert(args *Args) error {
	if args.Output == "" {
		return fmt.Errorf("The Output variable must be set in convert mode.")
	}
	if filepath.Clean(args.Output) == filepath.Clean(args.Input) {
		return fmt.Errorf("Input and Output are both '%s'. convert mode " +
			"cannot overwrite its own input.", args.Input)
	}
	if strings.ContainsAny(args.Output, "{}") {
		return fmt.Errorf("Output, '%s', has a variable, but convert mode " +
			"writes a single file.", args.Output)
	}
	return nil
}

// warnUnused logs a warning for each variable which was set but which mode
// never reads.
func warnUnused(mode Mode, args *Args) {
	used := map[Mode][]string{
		CheckMode: { },
		ListMode: { "Steps" },
		PrintMode: { "Steps", "Arrays", "Output" },
		SummaryMode: { "Keys", "Times", "TimesFile", "LoadBaseRun",
			"Output" },
		ESMRYMode: { },
		GridMode: { "Threads" },
		VolumesMode: { "Arrays", "Grid", "Restart", "ReportStep", "Filter",
			"FreeWaterLevels", "Output" },
		ConvertMode: { "Arrays", "Output", "Compress" },
	}[mode]

	set := map[string]bool{
		"Steps": args.Steps != nil, "Arrays": len(args.Arrays) > 0,
		"Keys": len(args.Keys) > 0, "Times": len(args.Times) > 0,
		"TimesFile": args.TimesFile != "",
		"LoadBaseRun": args.LoadBaseRun, "Grid": args.Grid != "",
		"Restart": args.Restart != "", "ReportStep": args.ReportStep != 0,
		"Filter": len(args.Filters) > 0,
		"FreeWaterLevels": len(args.FreeWaterLevels) > 0,
		"Output": args.Output != "", "Compress": args.Compress != 0,
	}
	for _, name := range used { delete(set, name) }

	log := logger.Sugar()
	for _, name := range sortedNames(set) {
		if set[name] {
			log.Warnf("The %s variable is not used in %s mode.", name, mode)
		}
	}
}

// CheckFile runs eclio's "check" mode. It decodes every array in the input
// file and reports the first problem found.
func CheckFile(w io.Writer, args *Args) error {
	f, err := eclfile.Open(args.Input)
	if err != nil { return err }
	defer f.Close()

	if err := f.Load(); err != nil { return err }

	form := "binary"
	if f.Formatted() { form = "formatted" }
	fmt.Fprintf(w, "%s: %s %s with %d arrays. No errors detected.\n",
		args.Input, form, KindOf(args.Input), f.Len())
	return nil
}
