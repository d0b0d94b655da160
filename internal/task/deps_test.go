package task

import (
	"reflect"
	"testing"
)

func TestMissing(t *testing.T) {
	g := Graph{1: nil, 2: {1}}
	tests := []struct {
		name string
		ids  []int
		want []int
	}{
		{"all present", []int{1, 2}, nil},
		{"empty", nil, nil},
		{"one missing", []int{1, 5}, []int{5}},
		{"duplicates collapsed", []int{5, 5, 6}, []int{5, 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Missing(tt.ids, g)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing(%v): got %v, want %v", tt.ids, got, tt.want)
			}
			if AllExist(tt.ids, g) != (len(tt.want) == 0) {
				t.Errorf("AllExist(%v) disagrees with Missing", tt.ids)
			}
		})
	}
}

func TestHasSelfReference(t *testing.T) {
	if !HasSelfReference(3, []int{1, 3}) {
		t.Error("expected self reference")
	}
	if HasSelfReference(3, []int{1, 2}) {
		t.Error("unexpected self reference")
	}
}

func TestCyclePath(t *testing.T) {
	// 2 -> 1, 3 -> 2, 4 -> 1
	g := Graph{1: nil, 2: {1}, 3: {2}, 4: {1}}

	tests := []struct {
		name     string
		taskID   int
		proposed []int
		want     []int
	}{
		{"direct", 1, []int{2}, []int{1, 2, 1}},
		{"transitive", 1, []int{3}, []int{1, 3, 2, 1}},
		{"sibling is fine", 4, []int{3}, nil},
		{"no deps", 1, nil, nil},
		{"existing edges of task ignored", 2, []int{4}, nil},
		{"self reference skipped", 1, []int{1}, nil},
		{"unknown dep ignored", 1, []int{9}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CyclePath(tt.taskID, tt.proposed, g)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CyclePath(%d, %v): got %v, want %v", tt.taskID, tt.proposed, got, tt.want)
			}
			if WouldCreateCycle(tt.taskID, tt.proposed, g) != (tt.want != nil) {
				t.Errorf("WouldCreateCycle disagrees with CyclePath")
			}
		})
	}
}

func TestFindCycle(t *testing.T) {
	tests := []struct {
		name string
		g    Graph
		want []int
	}{
		{"empty", Graph{}, nil},
		{"acyclic", Graph{1: nil, 2: {1}, 3: {1, 2}}, nil},
		{"self loop", Graph{1: {1}}, []int{1, 1}},
		{"two cycle", Graph{1: {2}, 2: {1}}, []int{1, 2, 1}},
		{"three cycle", Graph{1: {2}, 2: {3}, 3: {1}, 4: nil}, []int{1, 2, 3, 1}},
		{"dangling edge ignored", Graph{1: {7}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCycle(tt.g)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindCycle: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatPath(t *testing.T) {
	if got := FormatPath([]int{1, 2, 1}); got != "1 -> 2 -> 1" {
		t.Errorf("FormatPath: got %q", got)
	}
	if got := FormatPath(nil); got != "" {
		t.Errorf("FormatPath(nil): got %q", got)
	}
}
