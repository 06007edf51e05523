package cli_test

import (
	"testing"

	"github.com/gadsdencode/roboscan/internal/cli"
)

func TestParseArgs(t *testing.T) {
	t.Parallel()
	args, err := cli.ParseArgs([]string{"-config", "roboscan.yml", "-listen", ":9090", "-scan", "https://example.com"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.ConfigPath != "roboscan.yml" || args.Listen != ":9090" || args.ScanURL != "https://example.com" {
		t.Errorf("args = %+v", args)
	}
}

func TestParseArgs_Defaults(t *testing.T) {
	t.Parallel()
	args, err := cli.ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if args.ConfigPath != "" || args.Listen != "" || args.ScanURL != "" {
		t.Errorf("args = %+v, want zero values", args)
	}
}

func TestParseArgs_UnknownFlag(t *testing.T) {
	t.Parallel()
	if _, err := cli.ParseArgs([]string{"-bogus"}); err == nil {
		t.Error("unknown flag should error")
	}
}
