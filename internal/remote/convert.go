package remote

import (
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/protobuf/types/descriptorpb"

	"github.com/funvibe/genfun/internal/object"
)

// recordToMessage populates a dynamic message from a Record value. Fields
// missing from the message descriptor are ignored, mirroring proto3's
// tolerant decoding.
func recordToMessage(obj object.Object, msg *dynamic.Message) error {
	rec, ok := object.Unwrap(obj).(*object.Record)
	if !ok {
		return fmt.Errorf("expected a record, got %s", object.Unwrap(obj).Type())
	}

	for _, f := range rec.Fields {
		fd := msg.GetMessageDescriptor().FindFieldByName(f.Key)
		if fd == nil {
			continue
		}
		v, err := toProtoValue(f.Value, fd)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Key, err)
		}
		if v != nil {
			msg.SetField(fd, v)
		}
	}
	return nil
}

func toProtoValue(val object.Object, fd *desc.FieldDescriptor) (interface{}, error) {
	val = object.Unwrap(val)
	if _, isNil := val.(*object.Nil); isNil {
		return nil, nil
	}

	if fd.IsRepeated() {
		list, ok := val.(*object.List)
		if !ok {
			return nil, fmt.Errorf("expected a list for repeated field")
		}
		var slice []interface{}
		for _, item := range list.Elements {
			v, err := toProtoSingleValue(item, fd)
			if err != nil {
				return nil, err
			}
			slice = append(slice, v)
		}
		return slice, nil
	}

	return toProtoSingleValue(val, fd)
}

func toProtoSingleValue(val object.Object, fd *desc.FieldDescriptor) (interface{}, error) {
	val = object.Unwrap(val)
	switch fd.GetType() {
	case descriptorpb.FieldDescriptorProto_TYPE_INT32, descriptorpb.FieldDescriptorProto_TYPE_SINT32, descriptorpb.FieldDescriptorProto_TYPE_SFIXED32:
		if i, ok := val.(*object.Integer); ok {
			return int32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_INT64, descriptorpb.FieldDescriptorProto_TYPE_SINT64, descriptorpb.FieldDescriptorProto_TYPE_SFIXED64:
		if i, ok := val.(*object.Integer); ok {
			return i.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT32, descriptorpb.FieldDescriptorProto_TYPE_FIXED32:
		if i, ok := val.(*object.Integer); ok {
			return uint32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_UINT64, descriptorpb.FieldDescriptorProto_TYPE_FIXED64:
		if i, ok := val.(*object.Integer); ok {
			return uint64(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_FLOAT:
		if f, ok := val.(*object.Float); ok {
			return float32(f.Value), nil
		}
		if i, ok := val.(*object.Integer); ok {
			return float32(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_DOUBLE:
		if f, ok := val.(*object.Float); ok {
			return f.Value, nil
		}
		if i, ok := val.(*object.Integer); ok {
			return float64(i.Value), nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BOOL:
		if b, ok := val.(*object.Boolean); ok {
			return b.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_STRING:
		if s, ok := val.(*object.String); ok {
			return s.Value, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_BYTES:
		if b, ok := val.(*object.Bytes); ok {
			return b.Data, nil
		}
	case descriptorpb.FieldDescriptorProto_TYPE_MESSAGE:
		msg := dynamic.NewMessage(fd.GetMessageType())
		if err := recordToMessage(val, msg); err != nil {
			return nil, err
		}
		return msg, nil
	case descriptorpb.FieldDescriptorProto_TYPE_ENUM:
		if i, ok := val.(*object.Integer); ok {
			return int32(i.Value), nil
		}
		if s, ok := val.(*object.String); ok {
			if ev := fd.GetEnumType().FindValueByName(s.Value); ev != nil {
				return ev.GetNumber(), nil
			}
		}
	}
	return nil, fmt.Errorf("cannot convert %s to proto type %v", val.Type(), fd.GetType())
}

// messageToRecord converts a dynamic message into a Record, field by field.
func messageToRecord(msg *dynamic.Message) *object.Record {
	fields := make(map[string]object.Object)
	for _, fd := range msg.GetMessageDescriptor().GetFields() {
		fields[fd.GetName()] = fromProtoValue(msg.GetField(fd), fd)
	}
	return object.NewRecord(fields)
}

func fromProtoValue(val interface{}, fd *desc.FieldDescriptor) object.Object {
	if val == nil {
		return object.NIL
	}

	if fd.IsRepeated() {
		slice, ok := val.([]interface{})
		if !ok {
			return object.NewList(nil)
		}
		elements := make([]object.Object, 0, len(slice))
		for _, v := range slice {
			elements = append(elements, fromProtoSingleValue(v))
		}
		return object.NewList(elements)
	}

	return fromProtoSingleValue(val)
}

func fromProtoSingleValue(val interface{}) object.Object {
	switch v := val.(type) {
	case int32:
		return &object.Integer{Value: int64(v)}
	case int64:
		return &object.Integer{Value: v}
	case uint32:
		return &object.Integer{Value: int64(v)}
	case uint64:
		return &object.Integer{Value: int64(v)}
	case float32:
		return &object.Float{Value: float64(v)}
	case float64:
		return &object.Float{Value: v}
	case bool:
		if v {
			return object.TRUE
		}
		return object.FALSE
	case string:
		return &object.String{Value: v}
	case []byte:
		return &object.Bytes{Data: v}
	case *dynamic.Message:
		// An unset singular message field arrives as a typed nil, which the
		// interface nil check in fromProtoValue does not catch.
		if v == nil {
			return object.NIL
		}
		return messageToRecord(v)
	case int:
		return &object.Integer{Value: int64(v)}
	}
	return object.NIL
}

// classesFromMessage pulls the class vector out of a message's "class"
// field, when the schema declares one as repeated string.
func classesFromMessage(msg *dynamic.Message, fieldName string) []string {
	fd := msg.GetMessageDescriptor().FindFieldByName(fieldName)
	if fd == nil || !fd.IsRepeated() || fd.GetType() != descriptorpb.FieldDescriptorProto_TYPE_STRING {
		return nil
	}
	raw, ok := msg.GetField(fd).([]interface{})
	if !ok {
		return nil
	}
	classes := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			classes = append(classes, s)
		}
	}
	return classes
}

// setClassesOnMessage writes the class vector into the message's "class"
// field if the schema declares one.
func setClassesOnMessage(msg *dynamic.Message, fieldName string, classes []string) {
	if len(classes) == 0 {
		return
	}
	fd := msg.GetMessageDescriptor().FindFieldByName(fieldName)
	if fd == nil || !fd.IsRepeated() || fd.GetType() != descriptorpb.FieldDescriptorProto_TYPE_STRING {
		return
	}
	slice := make([]interface{}, len(classes))
	for i, c := range classes {
		slice[i] = c
	}
	msg.SetField(fd, slice)
}
