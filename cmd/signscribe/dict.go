package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ayusman/signscribe/internal/suggest"
	"github.com/spf13/cobra"
)

var dictCmd = &cobra.Command{
	Use:   "dict",
	Short: "Manage the suggestion dictionary",
}

var dictImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: `Import a word list with one "word [frequency]" entry per line`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		n, err := DB.Words().Import(f)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		total, err := DB.Words().Count()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d words (%d in dictionary).\n", n, total)
		return nil
	},
}

var dictAddCmd = &cobra.Command{
	Use:   "add <word> [frequency]",
	Short: "Add a word or update its frequency",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		freq := 1
		if len(args) == 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid frequency %q", args[1])
			}
			freq = n
		}
		return DB.Words().Add(args[0], freq)
	},
}

var dictCheckCmd = &cobra.Command{
	Use:   "check <word>",
	Short: "Check a word and print suggestions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		word := strings.ToLower(args[0])
		out := cmd.OutOrStdout()

		ok, err := DB.Words().Check(word)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(out, "%s: ok\n", word)
			return nil
		}

		suggestions, err := DB.Words().Suggest(word, suggest.Slots)
		if err != nil {
			return err
		}
		if len(suggestions) == 0 {
			fmt.Fprintf(out, "%s: not found, no suggestions\n", word)
			return nil
		}
		fmt.Fprintf(out, "%s: not found, did you mean %s?\n", word, strings.Join(suggestions, ", "))
		return nil
	},
}

func init() {
	dictCmd.AddCommand(dictImportCmd, dictAddCmd, dictCheckCmd)
	rootCmd.AddCommand(dictCmd)
}
