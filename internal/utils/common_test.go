package utils

import (
	"reflect"
	"testing"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , ,b ", []string{"a", "b"}},
		{"", []string{}},
		{" , ", []string{}},
	}
	for _, tt := range tests {
		got := SplitAndTrim(tt.in, ",")
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitAndTrim(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []int
		wantErr bool
	}{
		{"empty", "", []int{}, false},
		{"single", "3", []int{3}, false},
		{"spaces", " 1, 4 ,7", []int{1, 4, 7}, false},
		{"duplicates kept", "2,2", []int{2, 2}, false},
		{"not a number", "1,x", nil, true},
		{"zero", "0", nil, true},
		{"negative", "-2", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIDList(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseIDList(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseIDList(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		ptr  string
		want string
	}{
		{"", ""},
		{"#", ""},
		{"/title", "title"},
		{"#/tags/0", "tags[0]"},
		{"/a~1b/c~0d", "a/b.c~d"},
		{"/dependencies/2", "dependencies[2]"},
	}
	for _, tt := range tests {
		if got := JSONPointerToPath(tt.ptr); got != tt.want {
			t.Errorf("JSONPointerToPath(%q): got %q, want %q", tt.ptr, got, tt.want)
		}
	}
}
