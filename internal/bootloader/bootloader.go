package bootloader

import (
	"context"
	"fmt"
	"strings"

	"github.com/powertrim/powertrim/internal/execx"
	"github.com/powertrim/powertrim/internal/fsroot"
)

// Bootloader abstracts kernel-parameter management over heterogeneous boot
// configurations. Entries are opaque identities: file names for
// systemd-boot, the defaults variable for GRUB.
type Bootloader interface {
	// Kind names the bootloader family.
	Kind() string
	// ListEntries returns the identities of every active boot entry.
	ListEntries() ([]string, error)
	// InsertParam adds a parameter to every entry lacking it and returns
	// the entries actually modified. Inserting an already-present parameter
	// is a no-op success.
	InsertParam(param string) ([]string, error)
	// RemoveParam strips the exact token from the named entries.
	RemoveParam(param string, entries []string) error
	// HasParam reports whether the exact token is still present in any of
	// the named entries. Read-only; drift checks rely on it.
	HasParam(param string, entries []string) (bool, error)
	// Regenerate rebuilds derived boot config when the kind requires it.
	Regenerate(ctx context.Context) error
	// RequiresRegen reports whether edits only take effect after Regenerate.
	RequiresRegen() bool
}

// Detect resolves the active bootloader, forced or discovered. Discovery
// asks bootctl first (the capability-query tool), then falls back to path
// probes. Callers detect once per invocation and reuse the result.
func Detect(ctx context.Context, root fsroot.Root, runner execx.Runner, forced string) (Bootloader, error) {
	switch forced {
	case "systemd-boot":
		return NewSystemdBoot(root), nil
	case "grub":
		return NewGrub(root, runner), nil
	case "", "auto":
	default:
		return nil, fmt.Errorf("unknown bootloader kind %q", forced)
	}

	if result, err := runner.Run(ctx, "bootctl", "is-installed"); err == nil && result.Succeeded() {
		return NewSystemdBoot(root), nil
	}
	if root.Exists(systemdBootEntriesDir) {
		return NewSystemdBoot(root), nil
	}
	if root.Exists(grubDefaultsFile) {
		return NewGrub(root, runner), nil
	}
	return nil, fmt.Errorf("no supported bootloader found")
}

// addParam inserts param into a space-separated argument list. An exact
// match is left alone; a same-name parameter is replaced in place so entry
// ordering survives; otherwise the param is appended. Returns the new list
// and whether anything changed.
func addParam(args, param string) (string, bool) {
	name := paramName(param)
	words := strings.Fields(args)

	for _, word := range words {
		if word == param {
			return args, false
		}
	}

	replaced := false
	for i, word := range words {
		if paramName(word) == name {
			words[i] = param
			replaced = true
		}
	}
	if !replaced {
		words = append(words, param)
	}
	return strings.Join(words, " "), true
}

// hasParam reports whether the exact token appears in a space-separated
// argument list.
func hasParam(args, param string) bool {
	for _, word := range strings.Fields(args) {
		if word == param {
			return true
		}
	}
	return false
}

// removeParam strips every token whose name matches param's name.
func removeParam(args, param string) (string, bool) {
	name := paramName(param)
	words := strings.Fields(args)
	kept := words[:0]
	removed := false
	for _, word := range words {
		if paramName(word) == name {
			removed = true
			continue
		}
		kept = append(kept, word)
	}
	return strings.Join(kept, " "), removed
}

func paramName(param string) string {
	if i := strings.IndexByte(param, '='); i >= 0 {
		return param[:i]
	}
	return param
}

// preserveNewline carries the original file's trailing-newline choice over
// to the rewritten content.
func preserveNewline(newContent, original string) string {
	if strings.HasSuffix(original, "\n") && !strings.HasSuffix(newContent, "\n") {
		return newContent + "\n"
	}
	return newContent
}
