package datatable

import (
	"net/url"
	"strconv"
)

type EventKind string

const (
	EventPage EventKind = "page"
	EventSize EventKind = "size"
	EventSort EventKind = "sort"
)

// Query parameters carrying an encoded event.
const (
	ParamEvent = "ev"
	ParamTo    = "to"
	ParamField = "field"
)

// Event is a user intent raised by the table controls. Server rendering
// turns events into links; the owning page decodes them from the request.
type Event struct {
	Kind  EventKind
	Value int
	Field string
}

func PageEvent(page int) Event {
	return Event{Kind: EventPage, Value: page}
}

func SizeEvent(size int) Event {
	return Event{Kind: EventSize, Value: size}
}

func SortEvent(field string) Event {
	return Event{Kind: EventSort, Field: field}
}

// Encode writes the event into values, replacing any previous event.
func (e Event) Encode(values url.Values) {
	StripEvent(values)
	values.Set(ParamEvent, string(e.Kind))
	switch e.Kind {
	case EventSort:
		values.Set(ParamField, e.Field)
	default:
		values.Set(ParamTo, strconv.Itoa(e.Value))
	}
}

func (e Event) Query() string {
	values := url.Values{}
	e.Encode(values)
	return values.Encode()
}

// DecodeEvent reads an event from a query string.
func DecodeEvent(values url.Values) (Event, bool) {
	switch kind := EventKind(values.Get(ParamEvent)); kind {
	case EventPage, EventSize:
		to, err := strconv.Atoi(values.Get(ParamTo))
		if err != nil {
			return Event{}, false
		}
		return Event{Kind: kind, Value: to}, true
	case EventSort:
		field := values.Get(ParamField)
		if field == "" {
			return Event{}, false
		}
		return Event{Kind: kind, Field: field}, true
	default:
		return Event{}, false
	}
}

// StripEvent removes the event parameters from values.
func StripEvent(values url.Values) {
	values.Del(ParamEvent)
	values.Del(ParamTo)
	values.Del(ParamField)
}

// QueryLink builds hrefs that keep base (page state and filters) and add the
// event.
func QueryLink(path string, base url.Values) func(Event) string {
	return func(e Event) string {
		values := url.Values{}
		for key, vals := range base {
			values[key] = append([]string(nil), vals...)
		}
		e.Encode(values)
		return path + "?" + values.Encode()
	}
}
