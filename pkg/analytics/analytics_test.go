package analytics

import (
	"reflect"
	"testing"
)

func TestWordFrequency(t *testing.T) {
	a := &Analytics{}
	got := a.WordFrequency("Osmosis moves water. Water, water! The osmosis of 2024 is (important) to cells.")
	want := map[string]int{"osmosis": 2, "moves": 1, "water": 3, "cells": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequency() = %v, want %v", got, want)
	}
}

func TestTopNWords(t *testing.T) {
	a := &Analytics{}
	text := "beta alpha gamma beta alpha beta delta"
	tests := []struct {
		n    int
		want []string
	}{
		{2, []string{"beta", "alpha"}},
		{4, []string{"beta", "alpha", "delta", "gamma"}},
		{10, []string{"beta", "alpha", "delta", "gamma"}},
		{0, []string{}},
	}
	for _, tt := range tests {
		if got := a.TopNWords(text, tt.n); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("TopNWords(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"The", "because", "we're", "click"} {
		if !IsStopword(w) {
			t.Errorf("IsStopword(%q) = false, want true", w)
		}
	}
	if IsStopword("mitochondria") {
		t.Error("IsStopword(mitochondria) = true, want false")
	}
}
