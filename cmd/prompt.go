package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/danielolaszy/jiragraph/internal/config"
)

// promptCredentials asks for the basic auth username and password that were
// not supplied by flags or the environment. readPassword reads without echo.
func promptCredentials(cfg *config.JiraConfig, in io.Reader, out io.Writer, readPassword func() ([]byte, error)) error {
	if cfg.Username == "" {
		fmt.Fprint(out, "Username: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read username: %w", err)
		}
		cfg.Username = strings.TrimSpace(line)
	}

	if cfg.Password == "" {
		fmt.Fprint(out, "Password: ")
		password, err := readPassword()
		fmt.Fprintln(out)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = string(password)
	}

	return nil
}
