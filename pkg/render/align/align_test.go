package align

import (
	"encoding/json"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		resolve   func(Anchor, int, int) int
		anchor    Anchor
		container int
		content   int
		want      int
	}{
		{"literal", ResolveX, Literal(42), 600, 100, 42},
		{"literal truncates", ResolveY, Literal(42.9), 600, 100, 42},
		{"literal negative truncates toward zero", ResolveX, Literal(-3.7), 600, 100, -3},
		{"left", ResolveX, Keyword("left"), 600, 100, 0},
		{"top", ResolveY, Keyword("top"), 600, 100, 0},
		{"right", ResolveX, Keyword("right"), 600, 100, 500},
		{"bottom", ResolveY, Keyword("bottom"), 600, 100, 500},
		{"center", ResolveX, Keyword("center"), 600, 100, 250},
		{"center odd floors", ResolveY, Keyword("center"), 601, 100, 250},
		{"upper case keyword", ResolveX, Keyword("RIGHT"), 600, 100, 500},
		{"unknown keyword centers", ResolveX, Keyword("middle"), 600, 100, 250},
		{"top on x axis centers", ResolveX, Keyword("top"), 600, 100, 250},
		{"left on y axis centers", ResolveY, Keyword("left"), 600, 100, 250},
		{"content larger than container", ResolveX, Keyword("center"), 100, 200, -50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.resolve(tt.anchor, tt.container, tt.content); got != tt.want {
				t.Errorf("resolve(%v, %d, %d) = %d, want %d", tt.anchor, tt.container, tt.content, got, tt.want)
			}
		})
	}
}

func TestAnchorJSON(t *testing.T) {
	tests := []struct {
		in          string
		wantKeyword string
		wantValue   float64
		wantErr     bool
	}{
		{`12`, "", 12, false},
		{`12.5`, "", 12.5, false},
		{`"center"`, "center", 0, false},
		{`"Left"`, "left", 0, false},
		{`"30"`, "", 30, false},
		{`""`, "", 0, true},
		{`true`, "", 0, true},
		{`[1]`, "", 0, true},
	}
	for _, tt := range tests {
		var a Anchor
		err := json.Unmarshal([]byte(tt.in), &a)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			continue
		}
		if a.KeywordValue() != tt.wantKeyword || a.Value() != tt.wantValue {
			t.Errorf("Unmarshal(%s) = %+v", tt.in, a)
		}
	}
}

func TestAnchorMarshal(t *testing.T) {
	out, err := json.Marshal([]Anchor{Literal(7), Keyword("center")})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `[7,"center"]` {
		t.Errorf("Marshal = %s", out)
	}
}

func TestScaled(t *testing.T) {
	if got := Literal(10).Scaled(2); got.Value() != 20 {
		t.Errorf("Literal(10).Scaled(2) = %v", got)
	}
	if got := Keyword("center").Scaled(2); got.KeywordValue() != "center" {
		t.Errorf("keyword changed under scaling: %v", got)
	}
}

func TestResolveBox(t *testing.T) {
	x, y := ResolveBox(Keyword("center"), Keyword("bottom"), 100, 50, 600, 400)
	if x != 250 || y != 350 {
		t.Errorf("ResolveBox = (%d, %d), want (250, 350)", x, y)
	}
}
