// jsonstorectl works on the same documents and keys as the server without
// going through it: it evaluates pointers and queries against local JSON
// files and manages the token signing key.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const flagPretty = "pretty"

func newRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "jsonstorectl",
		Short:        "Offline tools for the JSON store",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}
	c.PersistentFlags().BoolP(flagPretty, "p", false, "Indent JSON output")

	c.AddCommand(
		newGetCmd(),
		newQueryCmd(),
		newKeygenCmd(),
		newPubkeyCmd(),
	)
	return c
}

// readInput reads the named file, or stdin when name is "-".
func readInput(c *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(c.InOrStdin())
	}
	return os.ReadFile(name)
}

func printJSON(c *cobra.Command, raw []byte) error {
	pretty, _ := c.Flags().GetBool(flagPretty)
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return err
		}
		raw = buf.Bytes()
	}
	_, err := fmt.Fprintln(c.OutOrStdout(), string(raw))
	return err
}
