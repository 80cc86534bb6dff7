package slims

// ContentStatus is the status of a Content record (cntn_status)
type ContentStatus int

const (
	ContentStatusPending   ContentStatus = 10
	ContentStatusAvailable ContentStatus = 20
	ContentStatusLabeled   ContentStatus = 30
	ContentStatusApproved  ContentStatus = 40
	ContentStatusRemoved   ContentStatus = 50
	ContentStatusCancelled ContentStatus = 60
)

var contentStatusNames = map[ContentStatus]string{
	ContentStatusPending:   "PENDING",
	ContentStatusAvailable: "AVAILABLE",
	ContentStatusLabeled:   "LABELED",
	ContentStatusApproved:  "APPROVED",
	ContentStatusRemoved:   "REMOVED",
	ContentStatusCancelled: "CANCELLED",
}

// String returns the status name
func (s ContentStatus) String() string {
	if name, ok := contentStatusNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}
