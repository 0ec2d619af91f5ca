package order

var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusProcessing: true,
		StatusCancelled:  true,
	},
	StatusProcessing: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusDelivered: true,
		StatusCompleted: true,
	},
	StatusDelivered: {
		StatusCompleted: true,
	},
	StatusCompleted: {},
	StatusCancelled: {},
	StatusInvested:  {},
}

// forceableStatuses are the targets an admin may set regardless of the
// current status. Forcing never touches wallets or stock.
var forceableStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusInvested:  true,
	StatusCancelled: true,
}

func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s Status) CanTransitionTo(next Status) bool {
	return allowedTransitions[s][next]
}

// Cancellable reports whether a customer may still cancel for a refund.
func (s Status) Cancellable() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s Status) Forceable() bool {
	return forceableStatuses[s]
}

// InitialStatus is the status a freshly placed order of the given type starts in.
// Orders without anything to ship have nothing to fulfil.
func InitialStatus(t Type) Status {
	if t == TypeResale {
		return StatusInvested
	}

	return StatusPending
}
