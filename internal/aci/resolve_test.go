package aci

import (
	"sync"
	"testing"
)

func TestResolveStandard(t *testing.T) {
	tests := []struct {
		index int
		hex   string
	}{
		{1, "#ff0000"},
		{2, "#ffff00"},
		{3, "#00ff00"},
		{4, "#00ffff"},
		{5, "#0000ff"},
		{6, "#ff00ff"},
		{7, "#ffffff"},
		{8, "#808080"},
		{9, "#c0c0c0"},
		{10, "#ff0000"},
		{11, "#ffaaaa"},
		{12, "#bd0000"},
		{13, "#bd7e7e"},
		{20, "#ff3f00"},
		{21, "#ffbfaa"},
		{30, "#ff7f00"},
		{40, "#ffbf00"},
		{50, "#ffff00"},
		{250, "#333333"},
		{255, "#ffffff"},
	}
	for _, tt := range tests {
		got := Resolve(tt.index)
		if got.Hex != tt.hex {
			t.Errorf("Resolve(%d).Hex = %s, want %s", tt.index, got.Hex, tt.hex)
		}
		if got.Index != tt.index {
			t.Errorf("Resolve(%d).Index = %d", tt.index, got.Index)
		}
		if got.A != 1 {
			t.Errorf("Resolve(%d).A = %v, want 1", tt.index, got.A)
		}
	}
}

func TestResolveFallback(t *testing.T) {
	for _, index := range []int{ByBlock, ByLayer, ByBlockAlt, -1, 300} {
		if got := Resolve(index); got != Default {
			t.Errorf("Resolve(%d) = %+v, want Default", index, got)
		}
	}
	if Default.Hex != "#ffffff" {
		t.Errorf("Default.Hex = %s", Default.Hex)
	}
}

func TestResolveDeterministic(t *testing.T) {
	var wg sync.WaitGroup
	for k := 1; k <= 255; k++ {
		want := Resolve(k)
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			if got := Resolve(k); got != want {
				t.Errorf("Resolve(%d) unstable: %+v vs %+v", k, got, want)
			}
		}(k)
	}
	wg.Wait()
}

func TestResolveWith(t *testing.T) {
	layer := RGB(0x102030)
	block := RGB(0xa0b0c0)
	o := Overrides{ByLayer: &layer, ByBlock: &block}

	if got := ResolveWith(ByLayer, o); got.Hex != "#102030" {
		t.Errorf("by layer = %s", got.Hex)
	}
	if got := ResolveWith(ByBlock, o); got.Hex != "#a0b0c0" {
		t.Errorf("by block = %s", got.Hex)
	}
	if got := ResolveWith(ByBlockAlt, o); got.Hex != "#a0b0c0" {
		t.Errorf("by block alt = %s", got.Hex)
	}
	if got := ResolveWith(1, o); got.Hex != "#ff0000" {
		t.Errorf("index 1 with overrides = %s", got.Hex)
	}
	if got := ResolveWith(ByLayer, Overrides{}); got != Default {
		t.Errorf("by layer without override = %+v", got)
	}
}

func TestFromRGBAndHex(t *testing.T) {
	c := FromRGB(0x336699)
	if c.R != 0x33 || c.G != 0x66 || c.B != 0x99 || c.Hex != "#336699" {
		t.Errorf("FromRGB = %+v", c)
	}
	if c.Packed() != 0x336699 {
		t.Errorf("Packed = %x", c.Packed())
	}

	p, err := ParseHex("#336699")
	if err != nil {
		t.Fatal(err)
	}
	if p != c {
		t.Errorf("ParseHex = %+v, want %+v", p, c)
	}
	if _, err := ParseHex("nope"); err == nil {
		t.Error("ParseHex(nope) should fail")
	}
}

func TestContrast(t *testing.T) {
	white := Resolve(7)
	if got := Contrast(white, FromRGB(0xffffff)); got.Hex != "#000000" {
		t.Errorf("white on white = %s", got.Hex)
	}
	if got := Contrast(white, FromRGB(0x000000)); got.Hex != "#ffffff" {
		t.Errorf("white on black = %s", got.Hex)
	}
	red := Resolve(1)
	if got := Contrast(red, FromRGB(0xffffff)); got != red {
		t.Errorf("red changed: %+v", got)
	}
}
