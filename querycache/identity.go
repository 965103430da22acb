package querycache

import (
	"fmt"
	"reflect"
)

// identifierFields are the field names ReflectIdentifier probes, in order.
var identifierFields = []string{"ID", "Id", "Identifier"}

// ReflectIdentifier is the default IdentifierFunc. It extracts a record's
// identifier by reflecting over common field names (ID, Id, Identifier) and
// formatting the value as a string, dereferencing one level of pointer
// indirection first.
//
// Records with none of those fields fail extraction, which fails the fetch
// that needed it; supply WithIdentifierFunc for such types.
func ReflectIdentifier[T any](record T) (string, error) {
	v := reflect.ValueOf(record)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "", fmt.Errorf("querycache: cannot extract identifier from nil %T", record)
		}
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return "", fmt.Errorf("querycache: cannot extract identifier from %T", record)
	}

	for _, fieldName := range identifierFields {
		field := v.FieldByName(fieldName)
		if field.IsValid() && field.CanInterface() {
			return fmt.Sprintf("%v", field.Interface()), nil
		}
	}

	return "", fmt.Errorf("querycache: no identifier field found in %T", record)
}
