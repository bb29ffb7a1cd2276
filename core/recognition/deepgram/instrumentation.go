package deepgram

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/vaanilabs/vaani-core/core/recognition/deepgram"

var logger = otelslog.NewLogger(scopeName)
