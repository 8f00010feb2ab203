package main

import "testing"

func TestRootCommandWiring(t *testing.T) {
	cmd := newRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"export", "import"} {
		if !names[want] {
			t.Fatalf("missing %q subcommand", want)
		}
	}

	debug := cmd.PersistentFlags().Lookup("debug")
	if debug == nil || debug.Shorthand != "d" {
		t.Fatal("--debug/-d flag not registered")
	}
	if cmd.PersistentFlags().Lookup("config") == nil {
		t.Fatal("--config flag not registered")
	}
}

func TestExportCommandFailsFastOnBadConfig(t *testing.T) {
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("KMS_KEY_ARN", "")

	cmd := newRootCommand()
	cmd.SetArgs([]string{"export", "--debug"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected a configuration error")
	}
}
