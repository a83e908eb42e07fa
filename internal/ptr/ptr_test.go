package ptr_test

import (
	"testing"

	"github.com/myrjola/wendler/internal/ptr"
)

func TestRef(t *testing.T) {
	t.Run("float", func(t *testing.T) {
		increment := 2.5
		p := ptr.Ref(increment)

		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}
		if *p != increment {
			t.Errorf("Expected %v, got %v", increment, *p)
		}

		// Verify that modifying the original value doesn't affect the pointer
		increment = 5
		if *p == increment {
			t.Errorf("Pointer value should not change when original value is modified")
		}
	})

	t.Run("struct", func(t *testing.T) {
		type override struct {
			Lift      string
			Increment float64
		}

		o := override{Lift: "press", Increment: 1.25}
		p := ptr.Ref(o)

		if p == nil {
			t.Fatal("Expected pointer to be non-nil")
		}
		if *p != o {
			t.Errorf("Expected %+v, got %+v", o, *p)
		}
	})
}

func TestDeref(t *testing.T) {
	tests := []struct {
		name     string
		p        *float64
		fallback float64
		want     float64
	}{
		{name: "nil uses fallback", p: nil, fallback: 5, want: 5},
		{name: "set value wins", p: ptr.Ref(10.0), fallback: 5, want: 10},
		{name: "zero is a value", p: ptr.Ref(0.0), fallback: 5, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ptr.Deref(tt.p, tt.fallback); got != tt.want {
				t.Errorf("Deref() = %v, want %v", got, tt.want)
			}
		})
	}
}
