package sequencer

import (
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/util/panics"
)

var log = logger.RegisterSubSystem("SEQR")
var spawn = panics.GoroutineWrapperFunc(log)
