package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// layering forbids upward imports: the simulation must stay transport-free
// and the wire codec must not reach into room management.
var layering = []struct {
	pkgPrefix       string
	forbiddenPrefix string
}{
	{"rust-rush/server/internal/world", "rust-rush/server/internal/sim"},
	{"rust-rush/server/internal/world", "rust-rush/server/internal/registry"},
	{"rust-rush/server/internal/world", "rust-rush/server/internal/net"},
	{"rust-rush/server/internal/sim", "rust-rush/server/internal/registry"},
	{"rust-rush/server/internal/sim", "rust-rush/server/internal/net"},
	{"rust-rush/server/internal/registry", "rust-rush/server/internal/net"},
	{"rust-rush/server/internal/net/proto", "rust-rush/server/internal/registry"},
	{"rust-rush/server/internal/net/proto", "rust-rush/server/internal/net/ws"},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	decoder := json.NewDecoder(bytes.NewReader(output))

	var violations []string
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
			os.Exit(1)
		}

		for _, rule := range layering {
			if !strings.HasPrefix(pkg.ImportPath, rule.pkgPrefix) {
				continue
			}
			for _, imp := range pkg.Imports {
				if strings.HasPrefix(imp, rule.forbiddenPrefix) {
					violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
				}
			}
		}
	}

	if len(violations) > 0 {
		sort.Strings(violations)
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}
