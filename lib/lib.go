/*package lib contains the work behind each of eclio's modes, along with the
handling of its config files and command line. Reading and writing result
files is done by lib/'s subpackages: ecl (the record codec), eclfile (array
files), rst (restart files), smry (summaries), grid (grid geometry) and
modinit (filters over INIT files).
*/
package lib

import (
	"fmt"
	"io"
)

var (
	// Version is the version of the software.
	Version = "0.1.0"
)

const helpText = `eclio %s reads and writes ECLIPSE result files.

Usage:
    $ eclio <mode> [<config file>] [--<Variable> <value>]...

Variables are read from the [eclio] section of the config file and can be
overwritten on the command line, e.g.

    [eclio]
    Input = SPE9.UNRST
    Steps = 0..100 - 63
    Arrays = PRESSURE SWAT
    Output = "dump/{%%04d,step}.txt"

Modes:
    help     Print this message.
    check    Decode every array in Input and report any problem.
    list     List the arrays in Input. Restart files are listed by report
             step, limited to Steps, and RFT files by well and date.
    print    Print the values of Arrays (default: all) from Input. A {step}
             variable in Output writes each report step to its own file.
    summary  Print the summary vectors matched by Keys ('?' and '*' are
             wildcards). Times interpolates them, and LoadBaseRun = true
             splices in the run this one was restarted from.
    esmry    Write the ESMRY form of the SMSPEC file Input.
    grid     Describe the EGRID file Input.
    volumes  Sum the Arrays columns (default: PORV, and CELLVOL if Grid is
             set) over the cells of the INIT file Input which pass every
             Filter. Restart and ReportStep add solution columns and
             FreeWaterLevels keeps the cells above the free water level.
    convert  Rewrite Input as Output, which is formatted if its extension
             starts with F. Arrays and Compress (none, zstd, gzip) apply.

Other variables:
    Filter    "<column> <op> <value> [<value>]", with op one of eq, lt, gt,
              between. May be given more than once.
    Threads   Number of threads, or -1 for every core.
    LogLevel  debug, info, warn or error.
`

// PrintHelp writes eclio's help message to w.
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, helpText, Version)
}
