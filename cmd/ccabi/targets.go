package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ccabi/internal/arch"
	"ccabi/internal/types"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported target triples",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTargets(cmd.OutOrStdout())
	},
}

func listTargets(w io.Writer) error {
	for _, triple := range arch.Registered() {
		a, err := arch.Lookup(triple, arch.Config{})
		if err != nil {
			return err
		}
		ptr, err := a.PointerSize().Uint64()
		if err != nil {
			return err
		}
		ld, err := a.FloatSize(types.FloatLongDouble, false).Uint64()
		if err != nil {
			return err
		}
		marker := ""
		if triple == arch.DefaultTriple {
			marker = "  (default)"
		}
		fmt.Fprintf(w, "%-26s pointer %d  long %d  long double %d  char %s%s\n",
			triple, ptr, a.IntWidth(types.IntLong)/8, ld, signedness(a.IsCharSigned()), marker)
	}
	return nil
}

func signedness(signed bool) string {
	if signed {
		return "signed"
	}
	return "unsigned"
}
