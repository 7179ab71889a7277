package roundaccountant

import (
	"github.com/dposnet/dposd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("ROND")
