package overlord

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// Message keys.
const (
	keyAttributes = "attributes"
	keyError      = "error"
	keyCommand    = "command"
	keyArgs       = "args"
)

// Request is an administrative command sent by a client.
type Request struct {
	Command string
	Args    []string
}

// Message is a server message as seen by a client.
// Exactly one of Attributes and Error is set.
type Message struct {
	Attributes map[string]any
	Error      string
}

// EncodeAttributes renders an attributes message.
func EncodeAttributes(attributes map[string]any) ([]byte, error) {
	fields := make(map[string]*structpb.Value, len(attributes))

	for name, value := range attributes {
		v, err := toValue(value)
		if err != nil {
			return nil, fmt.Errorf("encode attribute %s: %w", name, err)
		}

		fields[name] = v
	}

	return marshal(map[string]*structpb.Value{
		keyAttributes: structpb.NewStructValue(&structpb.Struct{Fields: fields}),
	})
}

// EncodeError renders an error message.
func EncodeError(text string) ([]byte, error) {
	return marshal(map[string]*structpb.Value{
		keyError: structpb.NewStringValue(text),
	})
}

// EncodeRequest renders a client request.
func EncodeRequest(req Request) ([]byte, error) {
	args := make([]*structpb.Value, len(req.Args))
	for i, arg := range req.Args {
		args[i] = structpb.NewStringValue(arg)
	}

	return marshal(map[string]*structpb.Value{
		keyCommand: structpb.NewStringValue(req.Command),
		keyArgs:    structpb.NewListValue(&structpb.ListValue{Values: args}),
	})
}

// DecodeRequest parses a client request. Missing args mean no arguments.
func DecodeRequest(data []byte) (Request, error) {
	var msg structpb.Struct
	if err := protojson.Unmarshal(data, &msg); err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	command, ok := msg.GetFields()[keyCommand]
	if !ok {
		return Request{}, fmt.Errorf("%w: no '%s' key found", ErrInvalidMessage, keyCommand)
	}

	name, ok := command.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return Request{}, fmt.Errorf("%w: '%s' must be a string", ErrInvalidMessage, keyCommand)
	}

	req := Request{Command: name.StringValue}

	args, ok := msg.GetFields()[keyArgs]
	if !ok {
		return req, nil
	}

	switch kind := args.GetKind().(type) {
	case *structpb.Value_NullValue:
		return req, nil
	case *structpb.Value_ListValue:
		for _, arg := range kind.ListValue.GetValues() {
			s, ok := arg.GetKind().(*structpb.Value_StringValue)
			if !ok {
				return Request{}, fmt.Errorf("%w: '%s' must be a list of strings", ErrInvalidMessage, keyArgs)
			}

			req.Args = append(req.Args, s.StringValue)
		}

		return req, nil
	default:
		return Request{}, fmt.Errorf("%w: '%s' must be a list", ErrInvalidMessage, keyArgs)
	}
}

// DecodeMessage parses a server message.
func DecodeMessage(data []byte) (Message, error) {
	var msg structpb.Struct
	if err := protojson.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	if attributes := msg.GetFields()[keyAttributes].GetStructValue(); attributes != nil {
		return Message{Attributes: attributes.AsMap()}, nil
	}

	if text, ok := msg.GetFields()[keyError].GetKind().(*structpb.Value_StringValue); ok {
		return Message{Error: text.StringValue}, nil
	}

	return Message{}, fmt.Errorf("%w: neither '%s' nor '%s' found", ErrInvalidMessage, keyAttributes, keyError)
}

func marshal(fields map[string]*structpb.Value) ([]byte, error) {
	data, err := protojson.Marshal(&structpb.Struct{Fields: fields})
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return data, nil
}

var errUnsupportedValue = errors.New("unsupported attribute value")

// toValue converts attribute values, including typed slices structpb does not accept.
func toValue(value any) (*structpb.Value, error) {
	switch v := value.(type) {
	case []bool:
		values := make([]*structpb.Value, len(v))
		for i, elem := range v {
			values[i] = structpb.NewBoolValue(elem)
		}

		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	case []string:
		values := make([]*structpb.Value, len(v))
		for i, elem := range v {
			values[i] = structpb.NewStringValue(elem)
		}

		return structpb.NewListValue(&structpb.ListValue{Values: values}), nil
	default:
		pv, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %T", errUnsupportedValue, value)
		}

		return pv, nil
	}
}
