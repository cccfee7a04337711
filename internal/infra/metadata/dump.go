package metadata

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// ValueLimit is the number of characters shown per field in a dump.
	ValueLimit = 1000

	NoMetadataLine = "No metadata found"
	dumpRule       = "------------------------------"
)

func renderDump(name string, size int64, entries []Entry, readErr error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", name)
	if size >= 0 {
		fmt.Fprintf(&b, "Size: %s bytes\n", humanize.Comma(size))
	}
	b.WriteString(dumpRule + "\n")

	if readErr != nil {
		fmt.Fprintf(&b, "Error: %v\n", readErr)
	}
	if len(entries) == 0 {
		b.WriteString(NoMetadataLine + "\n")
		return b.String()
	}

	group := ""
	for _, e := range entries {
		if e.Group != "" {
			if e.Group != group {
				fmt.Fprintf(&b, "--- %s ---\n", e.Group)
				group = e.Group
			}
			fmt.Fprintf(&b, "%s: %s\n", e.Key, formatValue(e))
			continue
		}
		fmt.Fprintf(&b, "[%s] : %s\n\n", e.Key, formatValue(e))
	}
	return b.String()
}

func formatValue(e Entry) string {
	if e.Binary > 0 {
		return fmt.Sprintf("<%d bytes binary>", e.Binary)
	}
	return Truncate(e.Value, ValueLimit)
}

// Truncate cuts s to limit characters and appends how many were dropped.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + fmt.Sprintf("\n... (+%s more)", humanize.Comma(int64(len(r)-limit)))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
