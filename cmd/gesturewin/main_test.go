package main

import (
	"path/filepath"
	"reflect"
	"testing"
)

func TestDemoBase(t *testing.T) {
	tests := []struct {
		out       string
		w, stride int
		want      string
	}{
		{"demo_imgs", 16, 1, filepath.Join("demo_imgs", "w16_s1")},
		{"demo_imgs", 32, 4, filepath.Join("demo_imgs", "w32_s4")},
		{"/tmp/out", 8, 2, filepath.Join("/tmp/out", "w8_s2")},
	}

	for _, tt := range tests {
		if got := demoBase(tt.out, tt.w, tt.stride); got != tt.want {
			t.Errorf("demoBase(%q, %d, %d) = %q, want %q", tt.out, tt.w, tt.stride, got, tt.want)
		}
	}
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"-data", "d", "-config", "a.yaml"}, "a.yaml"},
		{[]string{"--config=b.yaml"}, "b.yaml"},
		{[]string{"-data", "config"}, ""},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := configPath(tt.args); got != tt.want {
			t.Errorf("configPath(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, b.txt,,c ")
	want := []string{"a", "b.txt", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitList() = %v, want %v", got, want)
	}
	if splitList("") != nil {
		t.Error("splitList(\"\") should be nil")
	}
}
