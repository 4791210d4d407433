package lib

import (
	"fmt"
	"io"
	"strings"
)

// Mode is the mode eclio is being run in.
type Mode int
const (
	HelpMode Mode = iota
	CheckMode
	ListMode
	PrintMode
	SummaryMode
	ESMRYMode
	GridMode
	VolumesMode
	ConvertMode
)

var modeNames = []string{
	"help", "check", "list", "print", "summary", "esmry", "grid", "volumes",
	"convert",
}

// ParseMode converts the name of a mode into a Mode.
func ParseMode(name string) (Mode, error) {
	for i := range modeNames {
		if modeNames[i] == name { return Mode(i), nil }
	}
	return 0, fmt.Errorf("You attempted to run eclio in the mode '%s', but " +
		"the only valid modes are '%s'.", name,
		strings.Join(modeNames, "', '"))
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		panic(fmt.Sprintf("Impossible Mode value %d.", int(m)))
	}
	return modeNames[m]
}

// Run runs mode with the given arguments, writing its results to w. Help
// mode ignores args.
func Run(mode Mode, w io.Writer, args *Args) error {
	switch mode {
	case HelpMode:
		PrintHelp(w)
		return nil
	case CheckMode: return CheckFile(w, args)
	case ListMode: return List(w, args)
	case PrintMode: return Print(w, args)
	case SummaryMode: return Summary(w, args)
	case ESMRYMode: return ESMRY(w, args)
	case GridMode: return Grid(w, args)
	case VolumesMode: return Volumes(w, args)
	case ConvertMode: return Convert(w, args)
	}
	panic(fmt.Sprintf("Impossible Mode value %d.", int(mode)))
}

// FileKind is the kind of result file named by a path, judged from its
// extension.
type FileKind int
const (
	OtherFile FileKind = iota
	RestartFile
	SummaryFile
	GridFile
	InitFile
	RFTFile
)

// KindOf returns the kind of result file at path.
func KindOf(path string) FileKind {
	ext := strings.ToUpper(path)
	if i := strings.LastIndex(ext, "."); i >= 0 {
		ext = ext[i+1:]
	} else {
		return OtherFile
	}

	switch ext {
	case "UNRST", "FUNRST": return RestartFile
	case "SMSPEC", "FSMSPEC", "ESMRY": return SummaryFile
	case "EGRID", "FEGRID": return GridFile
	case "INIT", "FINIT": return InitFile
	case "RFT", "FRFT": return RFTFile
	}
	return OtherFile
}

func (k FileKind) String() string {
	switch k {
	case OtherFile: return "array file"
	case RestartFile: return "restart file"
	case SummaryFile: return "summary file"
	case GridFile: return "grid file"
	case InitFile: return "INIT file"
	case RFTFile: return "RFT file"
	}
	panic(fmt.Sprintf("Impossible FileKind value %d.", int(k)))
}
