package cmd

import (
	"testing"
)

func TestCompletion(t *testing.T) {
	c := Completion()
	for _, name := range []string{"holdings", "history", "pnl", "add", "rm", "account", "override", "target", "watch", "migrate"} {
		if _, ok := c.Sub[name]; !ok {
			t.Errorf("Completion() has no %q subcommand", name)
		}
	}
	if _, ok := c.Sub["history"].Flags["days"]; !ok {
		t.Error("history completion misses the -days flag")
	}
	got := c.Sub["add"].Args.Predict("")
	if len(got) != 8 {
		t.Errorf("add kinds = %v, want the 8 trade kinds", got)
	}
}
