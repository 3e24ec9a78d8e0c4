package orders

type Status string

const (
	StatusReceived    Status = "RECEIVED"
	StatusDelivered   Status = "DELIVERED"
	StatusCSVFallback Status = "CSV_FALLBACK"
)

var validNext = map[Status]map[Status]bool{
	StatusReceived:    {StatusDelivered: true, StatusCSVFallback: true},
	StatusCSVFallback: {StatusDelivered: true},
	StatusDelivered:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// StatusFor maps a webhook delivery result to the recorded status.
func StatusFor(delivered bool) Status {
	if delivered {
		return StatusDelivered
	}
	return StatusCSVFallback
}
