package escrow

type EventType string

const (
	EventInitiated = EventType("initiated")
	EventCompleted = EventType("completed")
	EventRefunded  = EventType("refunded")
)

// Event reports a state transition. Transfer is a snapshot taken after the
// transition was committed.
type Event struct {
	Type     EventType
	Transfer BridgeTransfer
}

type Subscription struct {
	Events chan Event
}

const subscriberBuffer = 128

// Subscribe registers the given id to receive transfer events. Calling it
// again with the same id returns the existing subscription.
func (e *Escrow) Subscribe(id string) *Subscription {
	e.subscriptionsLock.Lock()
	defer e.subscriptionsLock.Unlock()

	if sub, ok := e.subscriptions[id]; ok {
		return sub
	}

	sub := &Subscription{
		Events: make(chan Event, subscriberBuffer),
	}
	e.subscriptions[id] = sub

	return sub
}

func (e *Escrow) notifySubscribers(event Event) {
	e.subscriptionsLock.RLock()
	defer e.subscriptionsLock.RUnlock()

	for id, sub := range e.subscriptions {
		select {
		case sub.Events <- event:
		default:
			e.logger.Warnf("subscriber %s events buffer is full, dropping %s event for transfer %s",
				id, event.Type, event.Transfer.ID)
		}
	}
}
