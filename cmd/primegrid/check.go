package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/primegrid/primegrid/internal/prime"
)

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check N [N...]",
		Short: "Report whether each argument is prime",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, arg := range args {
				n, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("not an integer: %q", arg)
				}
				if prime.IsPrime(n) {
					fmt.Fprintf(out, "%d is prime\n", n)
				} else {
					fmt.Fprintf(out, "%d is not prime\n", n)
				}
			}
			return nil
		},
	}
}
