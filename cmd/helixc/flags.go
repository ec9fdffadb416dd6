package main

import "flag"

// newFlagSetWithDefaults builds the helixc flag set (SPEC_FULL.md §6,
// "cmd/helixc flags"): -dir, -out, -pkg, -config, -format={text,json}.
func newFlagSetWithDefaults(f *flagSet) *flag.FlagSet {
	fs := flag.NewFlagSet("helixc", flag.ExitOnError)
	fs.StringVar(&f.dir, "dir", ".", "directory of .hx source files to compile")
	fs.StringVar(&f.out, "out", "", "output file for the generated module (stdout if empty)")
	fs.StringVar(&f.pkg, "pkg", "", "generated package name (overrides helix.yaml)")
	fs.StringVar(&f.config, "config", "", "path to a helix.yaml project config file")
	fs.StringVar(&f.format, "format", "text", "diagnostics output format: text or json")
	return fs
}
