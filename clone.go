package grip

import "reflect"

// deepCopy returns an independent copy of a configuration instance.
// InjectSecrets uses it so that phase-2 results never alias the phase-1
// model: reference-typed fields (slices, maps, pointers) are duplicated
// recursively, value fields are copied wholesale.
func deepCopy[T any](src *T) *T {
	if src == nil {
		return nil
	}
	dst := new(T)
	*dst = *src
	detachFields(reflect.ValueOf(dst).Elem())
	return dst
}

// detachFields replaces shared reference values with fresh copies, in place.
func detachFields(v reflect.Value) {
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			detachFields(v.Field(i))
		}

	case reflect.Slice:
		if v.IsNil() {
			return
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(cp, v)
		for i := 0; i < cp.Len(); i++ {
			detachFields(cp.Index(i))
		}
		v.Set(cp)

	case reflect.Map:
		if v.IsNil() {
			return
		}
		cp := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			elem := reflect.New(iter.Value().Type()).Elem()
			elem.Set(iter.Value())
			detachFields(elem)
			cp.SetMapIndex(iter.Key(), elem)
		}
		v.Set(cp)

	case reflect.Ptr:
		if v.IsNil() {
			return
		}
		cp := reflect.New(v.Type().Elem())
		cp.Elem().Set(v.Elem())
		detachFields(cp.Elem())
		v.Set(cp)
	}
}
