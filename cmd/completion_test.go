package cmd

import (
	"bytes"
	"strings"
	"testing"
)

func TestCompletionCommandOutputsScripts(t *testing.T) {
	tests := []struct {
		name   string
		shell  string
		needle string
	}{
		{name: "bash", shell: "bash", needle: "# tasks bash completion"},
		{name: "zsh", shell: "zsh", needle: "#compdef tasks"},
		{name: "fish", shell: "fish", needle: "# tasks fish completion"},
		{name: "upper case", shell: "BASH", needle: "complete -F _tasks tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := &cli{out: &out}
			if err := c.completionCommand([]string{tt.shell}); err != nil {
				t.Fatalf("completionCommand() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.needle) {
				t.Fatalf("completion output missing %q for shell %q", tt.needle, tt.shell)
			}
			for _, name := range commandNames {
				if !strings.Contains(out.String(), name) {
					t.Errorf("completion for %s does not offer %q", tt.shell, name)
				}
			}
			if strings.Contains(out.String(), "%!") {
				t.Errorf("completion for %s has a formatting error", tt.shell)
			}
		})
	}
}

func TestCompletionCommandErrors(t *testing.T) {
	c := &cli{out: &bytes.Buffer{}}

	if err := c.completionCommand([]string{}); err == nil {
		t.Fatal("expected error when shell is missing")
	}
	if err := c.completionCommand([]string{"powershell"}); err == nil {
		t.Fatal("expected error for unsupported shell")
	}
}
