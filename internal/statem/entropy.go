package statem

import (
	"sync/atomic"
	"time"
)

// entropyPool is a package-wide stirring accumulator fed by wall-clock
// time at the start of every Drive call (§4.1 step 2). It makes no
// security claim whatsoever — it is the harmless diagnostic mix the
// original state machine performs by calling RAND_add on the current
// time, kept here only for behavioral parity with that step.
var entropyPool uint64

// stirEntropy mixes now into the package-wide pool.
func stirEntropy(now time.Time) {
	atomic.AddUint64(&entropyPool, uint64(now.UnixNano()))
}
