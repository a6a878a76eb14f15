package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownEventType is returned when decoding a type name this build does not know.
var ErrUnknownEventType = errors.New("unknown event type")

type eventDecoder func(data []byte) (Event, error)

func decodeAs[T Event](data []byte) (Event, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

var eventDecoders = map[string]eventDecoder{
	EventRecruitmentFormSubmitted:            decodeAs[RecruitmentFormSubmitted],
	EventCandidateAcceptedTrainingInvitation: decodeAs[CandidateAcceptedTrainingInvitation],
	EventCandidateRefusedTrainingInvitation:  decodeAs[CandidateRefusedTrainingInvitation],
	EventCandidateAttendedTraining:           decodeAs[CandidateAttendedTraining],
	EventCandidateObtainedLecturerRights:     decodeAs[CandidateObtainedLecturerRights],
	EventCandidateWasAbsentFromTraining:      decodeAs[CandidateWasAbsentFromTraining],
	EventCandidateResignedPermanently:        decodeAs[CandidateResignedPermanently],
	EventCandidateResignedTemporarily:        decodeAs[CandidateResignedTemporarily],
	EventContactOccured:                      decodeAs[ContactOccured],
	EventEmailSent:                           decodeAs[EmailSent],
	EventEmailSendingFailed:                  decodeAs[EmailSendingFailed],
}

// EncodeEvent returns the durable type name and JSON payload of e.
func EncodeEvent(e Event) (string, []byte, error) {
	if e == nil {
		return "", nil, errors.New("encode event: nil payload")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", e.EventName(), err)
	}
	return e.EventName(), data, nil
}

// DecodeEvent restores a payload from its durable form.
// Unknown names yield ErrUnknownEventType so readers can skip them.
func DecodeEvent(name string, data []byte) (Event, error) {
	decode, ok := eventDecoders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, name)
	}
	payload, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return payload, nil
}

// EventNames lists every known event type name in lexical order.
func EventNames() []string {
	names := make([]string, 0, len(eventDecoders))
	for name := range eventDecoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
