package sequence

import "testing"

func TestShape_Validate(t *testing.T) {
	tests := []struct {
		name    string
		shape   Shape
		wantErr bool
	}{
		{"typical", Shape{Width: 640, Height: 16, Channels: 3}, false},
		{"empty band", Shape{Width: 640, Height: 0, Channels: 1}, false},
		{"negative width", Shape{Width: -1, Height: 1, Channels: 1}, true},
		{"negative height", Shape{Width: 1, Height: -1, Channels: 1}, true},
		{"no channels", Shape{Width: 1, Height: 1, Channels: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.shape.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShape_Contains(t *testing.T) {
	s := Shape{Width: 4, Height: 6, Channels: 2}

	inside := [][3]int{{0, 0, 0}, {3, 5, 1}, {2, 3, 0}}
	for _, p := range inside {
		if !s.Contains(p[0], p[1], p[2]) {
			t.Errorf("Contains%v: got false, want true", p)
		}
	}

	outside := [][3]int{{-1, 0, 0}, {4, 0, 0}, {0, -1, 0}, {0, 6, 0}, {0, 0, -1}, {0, 0, 2}}
	for _, p := range outside {
		if s.Contains(p[0], p[1], p[2]) {
			t.Errorf("Contains%v: got true, want false", p)
		}
	}
}

func TestShape_Compatible(t *testing.T) {
	a := Shape{Width: 4, Height: 2, Channels: 3}

	if !a.Compatible(Shape{Width: 4, Height: 9, Channels: 3}) {
		t.Error("bands differing only in height should be compatible")
	}
	if a.Compatible(Shape{Width: 5, Height: 2, Channels: 3}) {
		t.Error("bands of different width should not be compatible")
	}
	if a.Compatible(Shape{Width: 4, Height: 2, Channels: 1}) {
		t.Error("bands of different channel count should not be compatible")
	}
}

func TestShape_String(t *testing.T) {
	if got := (Shape{Width: 4, Height: 6, Channels: 1}).String(); got != "4x6x1" {
		t.Errorf("String: got %q, want 4x6x1", got)
	}
}
