package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()

	for _, name := range []string{
		"new", "open", "close", "ls", "rm", "show", "check",
		"node", "edge", "fold", "enter", "exit", "ports",
		"export", "import", "template", "render", "browse",
		"serve", "cache", "version", "completion",
	} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd == root {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	for _, name := range []string{"config", "store", "doc", "at", "no-cache"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag --%s", name)
		}
	}
}

func TestCompletionCommand(t *testing.T) {
	// Keep the config lookup away from the user's files.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"completion", "bash"})
	if err := root.Execute(); err != nil {
		t.Fatalf("completion bash: %v", err)
	}
	if !strings.Contains(out.String(), appName) {
		t.Errorf("completion script does not mention %s", appName)
	}
}
