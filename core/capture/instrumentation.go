package capture

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/vaanilabs/vaani-core/core/capture"

var logger = otelslog.NewLogger(scopeName)
