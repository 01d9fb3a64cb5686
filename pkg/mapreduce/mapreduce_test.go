package mapreduce

import (
	"context"
	"reflect"
	"testing"
)

func TestMapAllReduce(t *testing.T) {
	lists := [][]string{
		{"Osmosis", "water", "osmosis"},
		{"water", " ", "cells"},
		{"cells", "Osmosis"},
	}
	maps, err := MapAll(context.Background(), lists, 2)
	if err != nil {
		t.Fatalf("MapAll() error = %v", err)
	}
	if len(maps) != 3 || maps[0]["osmosis"] != 1 {
		t.Fatalf("MapAll() = %v", maps)
	}

	got := Reduce(maps)
	want := map[string]int{"osmosis": 2, "water": 2, "cells": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reduce() = %v, want %v", got, want)
	}
}

func TestMapAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := MapAll(ctx, [][]string{{"a", "b"}}, 1); err == nil {
		t.Error("MapAll() with cancelled context error = nil, want error")
	}
	if _, err := CountKeywords(ctx, [][]string{{"a"}}, 1); err == nil {
		t.Error("CountKeywords() with cancelled context error = nil, want error")
	}
}

func TestCountKeywords(t *testing.T) {
	got, err := CountKeywords(context.Background(), [][]string{
		{"Osmosis", "water", "osmosis"},
		{"water", "cells"},
		{"cells", "water"},
		{"key:"},
	}, 3)
	if err != nil {
		t.Fatalf("CountKeywords() error = %v", err)
	}
	want := map[string]int{"osmosis": 1, "water": 3, "cells": 2, "key:": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CountKeywords() = %v, want %v", got, want)
	}

	top := TopKeywords(got, 2)
	if !reflect.DeepEqual(top, []string{"water", "cells"}) {
		t.Errorf("TopKeywords() = %v", top)
	}
	if f := FormatCounts(got, top[:1]); f[0] != "water:3" {
		t.Errorf("FormatCounts() = %v", f)
	}
}

func TestIsValidKeyword(t *testing.T) {
	tests := []struct {
		word string
		want bool
	}{
		{"x_train", true},
		{"func(", false},
		{"key:", false},
		{"a=", false},
		{`"quoted"`, true},
		{`it"s`, false},
		{"[ok]", true},
	}
	for _, tt := range tests {
		if got := isValidKeyword(tt.word); got != tt.want {
			t.Errorf("isValidKeyword(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}
