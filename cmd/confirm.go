package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/tasks-go/internal/storage"
)

// confirmer returns the collaborator asked before destructive actions. With
// assume_yes set every prompt is approved without reading input.
func (c *cli) confirmer() storage.Confirmer {
	if c.cfg.Config.AssumeYes {
		return storage.AlwaysConfirm
	}
	return storage.ConfirmFunc(c.ask)
}

// ask prints prompt and reads a y/N answer. Anything but y or yes declines.
func (c *cli) ask(prompt string) (bool, string) {
	fmt.Fprintf(c.out, "%s [y/N]: ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		fmt.Fprintln(c.out)
		return false, "no answer on input"
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, ""
	}
	return false, "declined by user"
}
