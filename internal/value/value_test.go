package value

import (
	"encoding/json"
	"testing"
)

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{"none", None(), "null"},
		{"string", String("/tmp"), `"/tmp"`},
		{"int64 negative", Int64(-7), "-7"},
		{"uint32", UInt32(577), "577"},
		{"uint16", UInt16(3), "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal(%v) = %s, want %s", tt.v, got, tt.want)
			}
		})
	}
}

func TestIsNone(t *testing.T) {
	if !None().IsNone() {
		t.Error("None().IsNone() = false, want true")
	}
	if Int8(0).IsNone() {
		t.Error("Int8(0).IsNone() = true, want false")
	}
}
