/*package error contains simple functions for reporting eclio errors.
*/
package error

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/phil-mansfield/eclio/lib/logger"

	"go.uber.org/zap"
)

// exit is replaced in tests.
var exit = os.Exit

// External reports an error and kills the program. It should be used when an
// error is something a user could reasonably be expected to fix through
// changes in configuration/data/environment. It has the same signature as
// the standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	logger.Get().Error("eclio exited early with the following error:\n" +
		fmt.Sprintf(format, a...))
	logger.Sync()
	exit(1)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix. It has the
// same signature as the standard fmt.*printf() functions.
func Internal(format string, a ...interface{}) {
	logger.Get().Error("eclio exited early with an internal error. Please " +
		"report this.", zap.String("error", fmt.Sprintf(format, a...)),
		zap.ByteString("stack", debug.Stack()))
	logger.Sync()
	exit(1)
}
