package bridge

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/vaanilabs/vaani-core/bridge"

var logger = otelslog.NewLogger(scopeName)
