package batch

import "squarify/internal/square"

type EventKind int

const (
	EventStatus EventKind = iota
	EventProgress
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventStatus:
		return "status"
	case EventProgress:
		return "progress"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event is one message from a running batch to its consumer.
type Event struct {
	Kind     EventKind
	Message  string
	IsError  bool
	Fraction float64
}

func Status(message string) Event {
	return Event{Kind: EventStatus, Message: message}
}

func Failure(message string) Event {
	return Event{Kind: EventStatus, Message: message, IsError: true}
}

func Progress(fraction float64) Event {
	return Event{Kind: EventProgress, Fraction: fraction}
}

func Done() Event {
	return Event{Kind: EventDone}
}

type Summary struct {
	Total           int
	Succeeded       int
	Failed          int
	BytesWritten    int64
	MetadataEntries int
	Results         []square.Result
}

// Converter converts one file. square.Square is the production converter.
type Converter func(path, outputFolder string, cfg square.CompressionConfig) square.Result
