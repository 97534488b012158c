package reflectlite

import "reflect"

// TypeFor returns the reflect.Type of T, including interface types.
func TypeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Indirect removes every level of pointer from rt.
func Indirect(rt reflect.Type) reflect.Type {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	return rt
}

// FieldNames returns the names of the direct fields of a struct type in
// declaration order. Embedded fields are named after their type.
func FieldNames(rt reflect.Type) []string {
	rt = Indirect(rt)
	names := make([]string, rt.NumField())
	for i := range names {
		names[i] = rt.Field(i).Name
	}
	return names
}
