package nakama

import (
	"encoding/json"
	"fmt"

	"durak/internal/app"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// eventOpCodes maps app events to server opcodes.
var eventOpCodes = map[app.EventKind]int64{
	app.EventPlayerLeft:    OpPlayerLeft,
	app.EventGameStarted:   OpGameStarted,
	app.EventHandDealt:     OpHandDealt,
	app.EventCardAttacked:  OpCardAttacked,
	app.EventCardCovered:   OpCardCovered,
	app.EventTurnPassed:    OpTurnPassed,
	app.EventCardsTaken:    OpCardsTaken,
	app.EventRoundResolved: OpRoundResolved,
	app.EventHandUpdated:   OpHandUpdated,
	app.EventGameEnded:     OpGameEnded,
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to convert %T to struct: %w", v, err)
	}
	return s, nil
}

// encodeMessage builds the binary wire form of a server message.
func encodeMessage(v any) ([]byte, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// decodeMessage is the inverse of encodeMessage, used by tests and tooling.
func decodeMessage(data []byte) (map[string]any, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s.AsMap(), nil
}

// encodeEvent returns the opcode and encoded payload for ev. extra fields are
// merged into the payload object.
func encodeEvent(ev app.Event, extra map[string]any) (int64, []byte, error) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	s, err := toStruct(ev.Payload)
	if err != nil {
		return 0, nil, err
	}
	if s.Fields == nil {
		s.Fields = make(map[string]*structpb.Value)
	}
	for k, v := range extra {
		val, err := structpb.NewValue(v)
		if err != nil {
			return 0, nil, fmt.Errorf("invalid field %s: %w", k, err)
		}
		s.Fields[k] = val
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return 0, nil, err
	}
	return opCode, data, nil
}

// MatchLabel is the searchable match label.
type MatchLabel struct {
	Game       string `json:"game"`
	Open       int    `json:"open"`
	State      string `json:"state"`
	MaxPlayers int    `json:"max_players"`
}

func encodeLabel(label MatchLabel) (string, error) {
	s, err := toStruct(label)
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
