package main

import (
	"fmt"
	"strconv"

	"github.com/bastiangx/keypredict/pkg/userdict"
	"github.com/spf13/cobra"
)

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the user dictionary",
	}
	cmd.AddCommand(newUserListCmd(), newUserAddCmd(), newUserRemoveCmd())
	return cmd
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List learned words",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			user := e.openUserDict(cmd.Context())
			defer user.Close(cmd.Context())

			for _, entry := range user.Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s\n", entry.Frequency, entry.Word)
			}
			return nil
		},
	}
}

func newUserAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <word> [frequency]",
		Short: "Add a word, or raise its frequency",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			freq := userdict.DefaultInitialFrequency
			if len(args) == 2 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < userdict.MinFrequency || n > userdict.MaxFrequency {
					return fmt.Errorf("frequency must be %d-%d, got %q", userdict.MinFrequency, userdict.MaxFrequency, args[1])
				}
				freq = n
			}
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			user := e.openUserDict(cmd.Context())
			if !user.AddWord(args[0], freq) {
				user.Close(cmd.Context())
				return fmt.Errorf("cannot add %q", args[0])
			}
			return user.Close(cmd.Context())
		},
	}
}

func newUserRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <word>",
		Aliases: []string{"rm"},
		Short:   "Forget a learned word",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			user := e.openUserDict(cmd.Context())
			if !user.Remove(args[0]) {
				user.Close(cmd.Context())
				return fmt.Errorf("%q is not in the user dictionary", args[0])
			}
			return user.Close(cmd.Context())
		},
	}
}
