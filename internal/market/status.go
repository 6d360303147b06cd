package market

type Status string

const (
	StatusCreated      Status = "created"
	StatusAcknowledged Status = "acknowledged"
	StatusShipped      Status = "shipped"
	StatusReceived     Status = "received"
	StatusConfirmed    Status = "confirmed"
	StatusCancelled    Status = "cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusCreated:      {StatusAcknowledged: true, StatusCancelled: true},
	StatusAcknowledged: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:      {StatusReceived: true, StatusCancelled: true},
	StatusReceived:     {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:    {},
	StatusCancelled:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Open reports whether the order still holds escrow (funds frozen, stock
// reserved). Terminal states are confirmed and cancelled.
func (s Status) Open() bool {
	return s != StatusConfirmed && s != StatusCancelled
}
