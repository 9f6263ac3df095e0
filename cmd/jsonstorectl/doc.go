package main

import (
	"encoding/json"
	"fmt"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/rql"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file|-> [pointer]",
		Short: "Print the value at a JSON pointer",
		Long:  `Resolve an RFC 6901 JSON pointer against a JSON file. An omitted pointer selects the whole document.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}
}

func runGet(c *cobra.Command, args []string) error {
	root, err := loadDocument(c, args[0])
	if err != nil {
		return err
	}

	var pointer string
	if len(args) > 1 {
		pointer = args[1]
	}

	v, err := resolve(root, pointer)
	if err != nil {
		return err
	}

	return printJSON(c, []byte(v.String()))
}

func newQueryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <file|-> <pointer> <rql>",
		Short: "Run an RQL query against the collection at a JSON pointer",
		Long: `Filter, sort and paginate the items of the array or object at pointer.
The query is given as it would appear in a URL, for example 'value>1&sort(-name)&limit(10)'.`,
		Args: cobra.ExactArgs(3),
		RunE: runQuery,
	}
}

func runQuery(c *cobra.Command, args []string) error {
	q, err := rql.Parse(args[2])
	if err != nil {
		return err
	}

	root, err := loadDocument(c, args[0])
	if err != nil {
		return err
	}

	target, err := resolve(root, args[1])
	if err != nil {
		return err
	}

	res, err := q.Apply(target)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}

	return printJSON(c, raw)
}

func loadDocument(c *cobra.Command, name string) (*jsondoc.Value, error) {
	data, err := readInput(c, name)
	if err != nil {
		return nil, err
	}

	root, err := jsondoc.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return root, nil
}

func resolve(root *jsondoc.Value, pointer string) (*jsondoc.Value, error) {
	p, err := jsondoc.ParsePointer(pointer)
	if err != nil {
		return nil, err
	}

	v, err := jsondoc.Resolve(root, p)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", pointer, err)
	}
	return v, nil
}
