package main

import (
	"fmt"
	keyrepo "jsonstore/internal/repositories/storage/key"
	"jsonstore/internal/token"

	"github.com/spf13/cobra"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen <path>",
		Short: "Create a token signing key",
		Long:  `Generate an ES512 signing key and write it to path. An existing key is never overwritten. The matching public key is printed.`,
		Args:  cobra.ExactArgs(1),
		RunE:  runKeygen,
	}
}

func runKeygen(c *cobra.Command, args []string) error {
	key, err := token.GenerateKey()
	if err != nil {
		return err
	}

	data, err := token.EncodePrivateKey(key)
	if err != nil {
		return err
	}

	if err := keyrepo.NewRepository(args[0]).Save(data); err != nil {
		return err
	}

	pub, err := token.EncodePublicKey(&key.PublicKey)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(c.OutOrStdout(), pub)
	return err
}

func newPubkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pubkey <path>",
		Short: "Print the public half of a signing key",
		Args:  cobra.ExactArgs(1),
		RunE:  runPubkey,
	}
}

func runPubkey(c *cobra.Command, args []string) error {
	data, err := keyrepo.NewRepository(args[0]).Load()
	if err != nil {
		return err
	}

	key, err := token.ParsePrivateKey(data)
	if err != nil {
		return err
	}

	pub, err := token.EncodePublicKey(&key.PublicKey)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(c.OutOrStdout(), pub)
	return err
}
