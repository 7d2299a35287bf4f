package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
)

// runSign prints the headers of a signed request, one per line.
func runSign(args []string, stdout, stderr io.Writer) error {
	fs, f := newFlagSet("sign", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	r, _, err := f.build()
	if err != nil {
		return err
	}

	for _, name := range slices.Sorted(maps.Keys(r.Header)) {
		fmt.Fprintf(stdout, "%s: %s\n", name, r.Header[name])
	}

	return nil
}
