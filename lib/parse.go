package lib

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phil-mansfield/eclio/lib/ecl"
	"github.com/phil-mansfield/eclio/lib/format"
	"github.com/phil-mansfield/eclio/lib/modinit"

	"gopkg.in/gcfg.v1"
)

// RawArgs stores the unprocessed values which the user assigned to each config
// variable. Config files put them in an [eclio] section:
//
//    [eclio]
//    Input = SPE9.UNRST
//    Steps = 0..100 - 63
//    Arrays = PRESSURE SWAT
type RawArgs struct {
	Eclio struct {
		Input string
		Output string
		Steps string
		Arrays string
		Keys string
		Times string
		TimesFile string
		LoadBaseRun string
		Grid string
		Restart string
		ReportStep string
		Filter []string
		FreeWaterLevels string
		Compress string
		LogLevel string
		Threads string
	}
}

// Filter is one parsed Filter variable.
type Filter struct {
	Column string
	Op modinit.Op
	Values []interface{}
}

// Args stores configuration information. It is a post-processed version of
// RawArgs.
type Args struct {
	Input, Output string
	// Steps is nil if every step should be used.
	Steps []int
	Arrays []string
	Keys []string
	Times []float64
	// TimesFile is a text file whose first column is read into Times.
	TimesFile string
	LoadBaseRun bool
	Grid, Restart string
	ReportStep int
	Filters []Filter
	FreeWaterLevels []float64
	Compress ecl.Compression
	LogLevel string
	Threads int
}

// ParseCommandLine parses the command line arguments and returns the mode
// eclio is being run in, the name of the config file, and any arguments which
// were set. Expects that the arguments are presented in the order:
// $ eclio <mode> <config file> [--<Arg1> <Value1>] [--<Arg2> <Value2>]
// The config file may be left out in help mode or if the first variable
// follows the mode directly. argv does not include the program name.
func ParseCommandLine(argv []string) (
	mode, configFile string, args *RawArgs, err error,
) {
	if len(argv) == 0 {
		return "", "", nil, fmt.Errorf("No mode was given. Run 'eclio help' " +
			"to see the valid modes.")
	}
	mode, argv = argv[0], argv[1:]
	if len(argv) > 0 && !strings.HasPrefix(argv[0], "--") {
		configFile, argv = argv[0], argv[1:]
	}

	sb := &strings.Builder{ }
	sb.WriteString("[eclio]\n")
	for i := 0; i < len(argv); i += 2 {
		if !strings.HasPrefix(argv[i], "--") {
			return "", "", nil, fmt.Errorf("Command line argument %d, '%s', " +
				"should be a variable name starting with '--', but isn't.",
				i + 1, argv[i])
		} else if i + 1 >= len(argv) {
			return "", "", nil, fmt.Errorf("The variable '%s' was given " +
				"without a value.", argv[i])
		}
		fmt.Fprintf(sb, "%s = %s\n", argv[i][2:], quote(argv[i+1]))
	}

	args = &RawArgs{ }
	if err := gcfg.ReadStringInto(args, sb.String()); err != nil {
		return "", "", nil, fmt.Errorf("The command line variables could not " +
			"be parsed: %s", err.Error())
	}
	return mode, configFile, args, nil
}

// quote quotes a value for an ini file.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// ParseConfigFile parses arguments from a config file. An empty file name
// gives empty arguments.
func ParseConfigFile(fileName string) (*RawArgs, error) {
	args := &RawArgs{ }
	if fileName == "" { return args, nil }
	if err := gcfg.ReadFileInto(args, fileName); err != nil {
		return nil, fmt.Errorf("The config file '%s' could not be parsed: %s",
			fileName, err.Error())
	}
	return args, nil
}

// Overwrite arguments in arg1 which have been set to non-default values in
// arg2.
func (arg1 *RawArgs) Overwrite(arg2 *RawArgs) {
	a, b := &arg1.Eclio, &arg2.Eclio
	strs := []struct{ dst *string; src string } {
		{ &a.Input, b.Input }, { &a.Output, b.Output }, { &a.Steps, b.Steps },
		{ &a.Arrays, b.Arrays }, { &a.Keys, b.Keys }, { &a.Times, b.Times },
		{ &a.TimesFile, b.TimesFile }, { &a.LoadBaseRun, b.LoadBaseRun },
		{ &a.Grid, b.Grid },
		{ &a.Restart, b.Restart }, { &a.ReportStep, b.ReportStep },
		{ &a.FreeWaterLevels, b.FreeWaterLevels },
		{ &a.Compress, b.Compress }, { &a.LogLevel, b.LogLevel },
		{ &a.Threads, b.Threads },
	}
	for _, s := range strs {
		if s.src != "" { *s.dst = s.src }
	}
	if len(b.Filter) > 0 {
		a.Filter = append([]string{ }, b.Filter...)
	}
}

// Process converts the raw user input to a format which is more useful for
// internal functions. Very simple validation will be done here, but nothing
// which requires interacting with external files.
func (args *RawArgs) Process() (*Args, error) {
	raw := &args.Eclio
	out := &Args{
		Input: raw.Input, Output: raw.Output,
		Grid: raw.Grid, Restart: raw.Restart, TimesFile: raw.TimesFile,
		Arrays: fields(raw.Arrays), Keys: fields(raw.Keys),
		LogLevel: raw.LogLevel,
	}

	var err error
	if raw.Steps != "" {
		if out.Steps, err = format.ExpandSequenceFormat(raw.Steps); err != nil {
			return nil, fmt.Errorf("The Steps variable, '%s', is not valid. %s",
				raw.Steps, err.Error())
		}
	}
	if out.Times, err = parseFloats("Times", raw.Times); err != nil {
		return nil, err
	}
	if out.FreeWaterLevels, err = parseFloats(
		"FreeWaterLevels", raw.FreeWaterLevels,
	); err != nil {
		return nil, err
	}

	if raw.LoadBaseRun != "" {
		if out.LoadBaseRun, err = strconv.ParseBool(raw.LoadBaseRun); err != nil {
			return nil, fmt.Errorf("LoadBaseRun is set to '%s', but it must " +
				"be 'true' or 'false'.", raw.LoadBaseRun)
		}
	}
	if raw.ReportStep != "" {
		if out.ReportStep, err = strconv.Atoi(raw.ReportStep); err != nil {
			return nil, fmt.Errorf("ReportStep is set to '%s', which isn't " +
				"an integer.", raw.ReportStep)
		}
	}
	if raw.Threads != "" {
		if out.Threads, err = strconv.Atoi(raw.Threads); err != nil {
			return nil, fmt.Errorf("Threads is set to '%s', which isn't an " +
				"integer.", raw.Threads)
		}
	}
	if raw.Compress != "" {
		if out.Compress, err = ecl.ParseCompression(raw.Compress); err != nil {
			return nil, fmt.Errorf("The Compress variable is not valid. %s",
				err.Error())
		}
	}

	for i := range raw.Filter {
		f, err := parseFilter(raw.Filter[i])
		if err != nil {
			return nil, fmt.Errorf("Filter %d, '%s', is not valid. %s",
				i + 1, raw.Filter[i], err.Error())
		}
		out.Filters = append(out.Filters, f)
	}

	return out, nil
}

// fields splits a list separated by spaces or commas.
func fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}

func parseFloats(name, s string) ([]float64, error) {
	tok := fields(s)
	if len(tok) == 0 { return nil, nil }
	out := make([]float64, len(tok))
	for i := range tok {
		x, err := strconv.ParseFloat(tok[i], 64)
		if err != nil {
			return nil, fmt.Errorf("Element %d of %s, '%s', is not a number.",
				i + 1, name, tok[i])
		}
		out[i] = x
	}
	return out, nil
}

// parseFilter parses "<column> <op> <value> [<value>]". Values written
// without a '.' or exponent are ints, which can be compared with any column.
func parseFilter(s string) (Filter, error) {
	tok := strings.Fields(s)
	if len(tok) < 3 {
		return Filter{ }, fmt.Errorf("Filters are written as '<column> <op> " +
			"<value> [<value>]'.")
	}

	op, err := modinit.ParseOp(tok[1])
	if err != nil { return Filter{ }, err }

	f := Filter{ Column: tok[0], Op: op }
	for _, v := range tok[2:] {
		if n, err := strconv.Atoi(v); err == nil {
			f.Values = append(f.Values, n)
		} else if x, err := strconv.ParseFloat(v, 64); err == nil {
			f.Values = append(f.Values, x)
		} else {
			return Filter{ }, fmt.Errorf("'%s' is not a number.", v)
		}
	}
	return f, nil
}
