package main

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/vaanilabs/vaani-core/cmd/vaani"

var logger = otelslog.NewLogger(scopeName)
