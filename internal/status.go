package internal

import (
	"github.com/mitchellh/reflectwalk"
	"reflect"
	"strconv"
	"strings"
)

// quatFieldNames renames gonum's quaternion components to the x, y, z, w convention of tracking hardware
var quatFieldNames = map[string]string{"Imag": "x", "Jmag": "y", "Kmag": "z", "Real": "w"}

// FormatNumbers renders every numeric field reachable from v as "name: +0.00000", separated by two spaces.
// It is meant for human-readable status output only (nested fields are prefixed with their parent's name).
func FormatNumbers(v interface{}) string {
	w := &numberWalker{}
	if err := reflectwalk.Walk(v, w); err != nil {
		return err.Error()
	}
	return strings.Join(w.out, "  ")
}

// FormatSigned formats a number with 5 decimals and an explicit sign
func FormatSigned(f float64) string {
	s := strconv.FormatFloat(f, 'f', 5, 64)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

type numberWalker struct {
	path    []string
	pending string
	out     []string
}

func (w *numberWalker) Enter(l reflectwalk.Location) error {
	if l == reflectwalk.StructField {
		w.path = append(w.path, w.pending)
	}
	return nil
}

func (w *numberWalker) Exit(l reflectwalk.Location) error {
	if l == reflectwalk.StructField {
		w.path = w.path[:len(w.path)-1]
	}
	return nil
}

func (w *numberWalker) Struct(_ reflect.Value) error {
	return nil
}

func (w *numberWalker) StructField(field reflect.StructField, _ reflect.Value) error {
	if field.PkgPath != "" { // Unexported
		return reflectwalk.SkipEntry
	}
	name, ok := quatFieldNames[field.Name]
	if !ok {
		name = strings.ToLower(field.Name[:1]) + field.Name[1:]
	}
	w.pending = name
	return nil
}

func (w *numberWalker) Primitive(v reflect.Value) error {
	if !v.IsValid() { // nil optional value
		return nil
	}
	var f float64
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		f = v.Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(v.Int())
	default:
		return nil
	}
	name := strings.Join(w.path, ".")
	if name == "" {
		name = "value"
	}
	w.out = append(w.out, name+": "+FormatSigned(f))
	return nil
}
