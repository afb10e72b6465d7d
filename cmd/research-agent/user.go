// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage API users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user who can log in to the API",
	Long: `Add creates a user in the database. The password is read from --password
or, when that is empty, from the first line of stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

func init() {
	userAddCmd.Flags().String("password", "", "password (default: read from stdin)")

	userCmd.AddCommand(userAddCmd)
	rootCmd.AddCommand(userCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	username := strings.TrimSpace(args[0])
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if username == "" || password == "" {
		return fmt.Errorf("username and password are required")
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := st.CreateUser(commandContext(cmd), username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (id %d)\n", username, id)
	return nil
}
