// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command coffsyms dumps the COFF symbol table of a `.obj` file,
// demangling each symbol name by default.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/saferwall/demangle/coffobj"
)

var wantDemangle bool

func dump(cmd *cobra.Command, args []string) {
	path := args[0]

	obj, err := coffobj.Open(path)
	if err != nil {
		fmt.Printf("error: failed to open %s: %v\n", path, err)
		os.Exit(1)
	}
	defer obj.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tVALUE\tTYPE\tCLASS\tNAME")
	for _, sym := range obj.Symbols() {
		name := sym.Name
		if wantDemangle {
			name = sym.Demangled
		}
		fmt.Fprintf(w, "%d\t%#08x\t%#02x\t%d\t%s\n",
			sym.SectionNumber, sym.Value, sym.Type, sym.StorageClass, name)
	}
	w.Flush()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "coffsyms <object-file>",
		Short: "Dump the COFF symbol table of a .obj file",
		Long:  "coffsyms reads the COFF symbol table out of a raw .obj file and prints each symbol, demangled by default",
		Args:  cobra.ExactArgs(1),
		Run:   dump,
	}

	rootCmd.Flags().BoolVar(&wantDemangle, "demangle", true, "print demangled names instead of raw mangled names")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
