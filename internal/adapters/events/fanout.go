package events

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/providers"
)

const subscriberBufferSize = 100

// subscriberSet holds the local subscribers of each channel. It is not
// synchronised; the owning bus guards it with its own mutex.
type subscriberSet map[string]map[chan *entities.AppointmentEvent]struct{}

// add registers a new buffered subscriber and returns it with the channel's
// subscriber count.
func (s subscriberSet) add(channel string) (chan *entities.AppointmentEvent, int) {
	if s[channel] == nil {
		s[channel] = make(map[chan *entities.AppointmentEvent]struct{})
	}
	eventChan := make(chan *entities.AppointmentEvent, subscriberBufferSize)
	s[channel][eventChan] = struct{}{}
	return eventChan, len(s[channel])
}

// remove closes one subscriber. It reports whether the channel has no
// subscribers left.
func (s subscriberSet) remove(channel string, eventChan chan *entities.AppointmentEvent) (removed, empty bool) {
	subscribers, ok := s[channel]
	if !ok {
		return false, false
	}
	if _, ok := subscribers[eventChan]; !ok {
		return false, false
	}
	delete(subscribers, eventChan)
	close(eventChan)
	if len(subscribers) == 0 {
		delete(s, channel)
		return true, true
	}
	return true, false
}

// closeChannel closes every subscriber of channel
func (s subscriberSet) closeChannel(channel string) {
	for subscriber := range s[channel] {
		close(subscriber)
	}
	delete(s, channel)
}

// deliver hands event to every subscriber of channel without blocking and
// returns how many received it. Events for one agent never reach another
// agent's channel.
func (s subscriberSet) deliver(channel string, event *entities.AppointmentEvent) int {
	if !visibleOn(channel, event) {
		log.Warn().
			Str("channel", channel).
			Str("event_id", event.ID).
			Str("agent_id", event.AgentID).
			Msg("Dropping event addressed to another agent")
		return 0
	}

	delivered := 0
	for subscriber := range s[channel] {
		select {
		case subscriber <- event:
			delivered++
		default:
			log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, dropping event")
		}
	}
	return delivered
}

// visibleOn reports whether event may be delivered on channel. The shared
// appointment channel carries everything; an agent channel carries only that
// agent's appointments.
func visibleOn(channel string, event *entities.AppointmentEvent) bool {
	agentID, ok := strings.CutPrefix(channel, providers.EventChannelAgentPrefix)
	if !ok {
		return true
	}
	return agentID == event.AgentID
}
