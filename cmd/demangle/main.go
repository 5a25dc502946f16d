// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command demangle is a thin front-end over the demangle library: it
// prints the mangled name it was given, then the demangled declaration
// (or a single user-facing error string) on the line after.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/saferwall/demangle"
)

var (
	noCallingConvention  bool
	noTagSpecifier       bool
	noAccessSpecifier    bool
	noMemberType         bool
	noReturnType         bool
	noVariableType       bool
	noLeadingUnderscores bool
	noMsKeywords         bool
	noThisType           bool
	nameOnly             bool
)

func flagsFromOptions() demangle.Flags {
	f := demangle.None
	if noCallingConvention {
		f = f.With(demangle.NoCallingConvention)
	}
	if noTagSpecifier {
		f = f.With(demangle.NoTagSpecifier)
	}
	if noAccessSpecifier {
		f = f.With(demangle.NoAccessSpecifier)
	}
	if noMemberType {
		f = f.With(demangle.NoMemberType)
	}
	if noReturnType {
		f = f.With(demangle.NoReturnType)
	}
	if noVariableType {
		f = f.With(demangle.NoVariableType)
	}
	if noLeadingUnderscores {
		f = f.With(demangle.NoLeadingUnderscores)
	}
	if noMsKeywords {
		f = f.With(demangle.NoMsKeywords)
	}
	if noThisType {
		f = f.With(demangle.NoThisType)
	}
	if nameOnly {
		f = f.With(demangle.NameOnly)
	}
	return f
}

func run(cmd *cobra.Command, args []string) {
	mangled := args[0]
	fmt.Println(mangled)

	out, err := demangle.Demangle([]byte(mangled), flagsFromOptions())
	if err != nil {
		fmt.Println("error: Invalid mangled name")
		return
	}
	fmt.Println(out)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "demangle <mangled-name>",
		Short: "Decode an MSVC-mangled C++ symbol name",
		Long:  "demangle decodes Microsoft Visual C++ mangled symbol names into C++ declarations",
		Args:  cobra.ExactArgs(1),
		Run:   run,
	}

	rootCmd.Flags().BoolVar(&noCallingConvention, "no-calling-convention", false, "suppress the calling convention")
	rootCmd.Flags().BoolVar(&noTagSpecifier, "no-tag-specifier", false, "suppress the class/struct/union/enum tag keyword")
	rootCmd.Flags().BoolVar(&noAccessSpecifier, "no-access-specifier", false, "suppress public:/protected:/private:")
	rootCmd.Flags().BoolVar(&noMemberType, "no-member-type", false, "suppress static/virtual/extern \"C\"")
	rootCmd.Flags().BoolVar(&noReturnType, "no-return-type", false, "suppress the return type")
	rootCmd.Flags().BoolVar(&noVariableType, "no-variable-type", false, "suppress a variable's type")
	rootCmd.Flags().BoolVar(&noLeadingUnderscores, "no-leading-underscores", false, "strip leading underscores from the calling-convention keyword")
	rootCmd.Flags().BoolVar(&noMsKeywords, "no-ms-keywords", false, "drop the calling-convention keyword")
	rootCmd.Flags().BoolVar(&noThisType, "no-this-type", false, "suppress this-qualifiers and ref qualifiers")
	rootCmd.Flags().BoolVar(&nameOnly, "name-only", false, "emit just the qualified name")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
