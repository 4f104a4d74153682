package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminProvisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create the admin account, or reset its password",
	Long: `Create an admin account if it does not exist. An existing account is
left alone unless --reset is given.

--username defaults to ADMIN_USERNAME. When the account is the configured
one and ADMIN_PASSWORD is set, that password is used. Otherwise it is
prompted for (twice) on a terminal, or read as one line from stdin.

Examples:
  folioctl admin provision --username ada
  folioctl admin provision --username ada --reset
  echo "$PW" | folioctl admin provision --username ada`,
	Args: cobra.NoArgs,
	RunE: runAdminProvision,
}

var (
	provisionUsername string
	provisionReset    bool
)

func init() {
	adminProvisionCmd.Flags().StringVar(&provisionUsername, "username", "", "admin username (default $ADMIN_USERNAME)")
	adminProvisionCmd.Flags().BoolVar(&provisionReset, "reset", false, "reset the password of an existing account")
	adminCmd.AddCommand(adminProvisionCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminProvision(cmd *cobra.Command, args []string) error {
	cfg, svcs, pool, err := openServices(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()
	defer svcs.Close()

	username := provisionUsername
	if username == "" {
		username = cfg.Admin.Username
	}
	if username == "" {
		return errors.New("--username is required when ADMIN_USERNAME is not set")
	}

	var configured string
	if username == cfg.Admin.Username {
		configured = cfg.Admin.Password
	}
	password, err := readPassword(configured, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	res, err := svcs.Admin.Provision(cmd.Context(), username, password, provisionReset)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %q: %s\n", username, res)
	return nil
}

// readPassword prefers the configured password, then a terminal prompt, then
// one line of piped input.
func readPassword(configured string, in io.Reader, prompt io.Writer) (string, error) {
	if configured != "" {
		return configured, nil
	}

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		fmt.Fprint(prompt, "Confirm password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", err
		}
		if string(first) != string(second) {
			return "", errors.New("passwords do not match")
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("no password given")
	}
	return line, nil
}
