package harvest

import "errors"

// ErrPageMissing reports that a title does not exist on the source site.
// Callers treat it as a skip, not a failure of the surrounding batch.
var ErrPageMissing = errors.New("page missing")
