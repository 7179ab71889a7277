package blockprocessor

import (
	"github.com/dposnet/dposd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BPRC")
