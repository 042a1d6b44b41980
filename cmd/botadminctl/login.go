package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/matheus3301/botadmin/internal/gateway"
)

func (c *cli) login(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("u", "", "username")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := bufio.NewReader(os.Stdin)
	if *username == "" {
		name, err := prompt(in, "Username: ")
		if err != nil {
			return err
		}
		*username = name
	}
	password, err := readPassword(in, "Password: ")
	if err != nil {
		return err
	}
	if *username == "" || password == "" {
		return errors.New("username and password are required")
	}

	ctx, cancel := requestContext()
	defer cancel()
	if err := c.st.Login(ctx, *username, password); err != nil {
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			return errors.New("invalid username or password")
		}
		return err
	}
	color.Green("Logged in to %s as %s (profile %q).", c.params.Config.Server.APIURL, *username, c.params.Profile)
	return nil
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func readPassword(in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(in, label)
	}
	fmt.Fprint(os.Stderr, label)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(data), nil
}
