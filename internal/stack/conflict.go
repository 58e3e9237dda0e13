package stack

import "strings"

// Classification is the verdict on a failed deployment attempt's output.
type Classification int

const (
	// OtherFailure is any failure the classifier does not recognize as a
	// resource conflict. Fatal and non-retryable.
	OtherFailure Classification = iota
	// ResourceConflict means a pre-existing named resource blocked the
	// deployment. Recoverable by one reclaim-and-retry cycle.
	ResourceConflict
)

// conflictMarkers are the known shapes of "named resource already exists"
// errors. The list deliberately favors precision over recall: an
// unrecognized failure must never trigger destructive cleanup.
var conflictMarkers = []string{
	"already exists",
	"AlreadyExists",
	"ResourceExistsException",
	"EntityAlreadyExists",
}

func (c Classification) String() string {
	if c == ResourceConflict {
		return "resource-conflict"
	}
	return "other-failure"
}

// ClassifyFailure inspects captured deployment output and reports whether
// the failure was caused by a pre-existing named resource.
func ClassifyFailure(output string) Classification {
	for _, marker := range conflictMarkers {
		if strings.Contains(output, marker) {
			return ResourceConflict
		}
	}
	return OtherFailure
}
