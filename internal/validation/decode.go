package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()

// decoder walks a JSON document alongside the destination value so that every
// mistyped field is reported, not only the first one encoding/json stops at.
// Paths use the validator's form: makers[0].username.
type decoder struct {
	fields []FieldError
}

func (d *decoder) decode(raw json.RawMessage, v reflect.Value, path string) {
	if isNull(raw) {
		switch v.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			v.SetZero()
		}
		return
	}

	if reflect.PointerTo(v.Type()).Implements(unmarshalerType) {
		d.leaf(raw, v, path)
		return
	}

	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		d.decode(raw, v.Elem(), path)

	case reflect.Struct:
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			d.mismatch(path, v.Type(), raw)
			return
		}
		d.decodeStruct(obj, v, path)

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			d.leaf(raw, v, path)
			return
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			d.mismatch(path, v.Type(), raw)
			return
		}
		out := reflect.MakeSlice(v.Type(), len(items), len(items))
		for i, item := range items {
			d.decode(item, out.Index(i), path+"["+strconv.Itoa(i)+"]")
		}
		v.Set(out)

	default:
		d.leaf(raw, v, path)
	}
}

func (d *decoder) decodeStruct(obj map[string]json.RawMessage, v reflect.Value, path string) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, ok := jsonName(sf)
		if !ok {
			continue
		}
		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			d.decodeStruct(obj, v.Field(i), path)
			continue
		}
		if name == "" {
			name = sf.Name
		}

		raw, found := lookup(obj, name)
		if !found {
			continue
		}
		d.decode(raw, v.Field(i), join(path, name))
	}
}

// leaf hands scalars, maps, interfaces and custom unmarshalers to
// encoding/json.
func (d *decoder) leaf(raw json.RawMessage, v reflect.Value, path string) {
	if err := json.Unmarshal(raw, v.Addr().Interface()); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			d.fields = append(d.fields, FieldError{
				Path:    join(path, typeErr.Field),
				Code:    "invalid_type",
				Message: fmt.Sprintf("expected %s, received %s", jsonKind(typeErr.Type), typeErr.Value),
			})
			return
		}
		d.mismatch(path, v.Type(), raw)
	}
}

func (d *decoder) mismatch(path string, t reflect.Type, raw json.RawMessage) {
	d.fields = append(d.fields, FieldError{
		Path:    path,
		Code:    "invalid_type",
		Message: fmt.Sprintf("expected %s, received %s", jsonKind(t), rawKind(raw)),
	})
}

func jsonName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() && !sf.Anonymous {
		return "", false
	}
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	return name, true
}

// lookup matches keys the way encoding/json does: exact first, then
// case-insensitive.
func lookup(obj map[string]json.RawMessage, name string) (json.RawMessage, bool) {
	if raw, ok := obj[name]; ok {
		return raw, true
	}
	for k, raw := range obj {
		if strings.EqualFold(k, name) {
			return raw, true
		}
	}
	return nil, false
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func rawKind(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
