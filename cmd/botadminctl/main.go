package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"go.uber.org/fx"

	"github.com/matheus3301/botadmin/internal/console"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/profile"
	"github.com/matheus3301/botadmin/internal/session"
	"github.com/matheus3301/botadmin/internal/store"
)

const requestTimeout = 15 * time.Second

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	flag.Usage = printUsage
	flag.Parse()

	args, trailingJSON := stripJSONFlag(flag.Args())
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	if args[0] == "help" {
		printUsage()
		return
	}

	params, err := console.LoadParams(*profileFlag, "botadminctl")
	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
	params.Console = true

	var (
		st *console.State
		db *store.DB
	)
	app := console.App(params, fx.Populate(&st, &db))
	if err := app.Err(); err != nil {
		color.Red("startup failed: %v", err)
		os.Exit(1)
	}
	startCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		color.Red("startup failed: %v", err)
		os.Exit(1)
	}

	c := &cli{st: st, db: db, params: params, json: *jsonFlag || trailingJSON}
	err = c.run(args[0], args[1:])

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)

	if err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}

func printUsage() {
	yellow := color.New(color.FgYellow)

	fmt.Fprintln(os.Stderr, "usage: botadminctl [--profile <name>] [--json] <command>")
	fmt.Fprintln(os.Stderr)
	yellow.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  login [-u user]            Log in (prompts for the password)")
	fmt.Fprintln(os.Stderr, "  logout                     Forget the stored credential")
	fmt.Fprintln(os.Stderr, "  status                     Show profile, backend and credential")
	fmt.Fprintln(os.Stderr, "  messages                   Show message history, newest first")
	fmt.Fprintln(os.Stderr, "  sessions                   List the bot's platform sessions")
	fmt.Fprintln(os.Stderr, "  config get [--yaml]        Print the backend configuration")
	fmt.Fprintln(os.Stderr, "  config set -f FILE         Replace the configuration from JSON or YAML")
	fmt.Fprintln(os.Stderr, "  config set-key PATH VALUE  Change one value, e.g. telegram.enabled false")
	fmt.Fprintln(os.Stderr, "  tail                       Follow live messages until interrupted")
	fmt.Fprintln(os.Stderr)
	yellow.Fprintln(os.Stderr, "environment:")
	fmt.Fprintln(os.Stderr, "  BOTADMIN_HOME              Base directory (default ~/.botadmin)")
	fmt.Fprintln(os.Stderr, "  BOTADMIN_API_URL           REST base URL")
	fmt.Fprintln(os.Stderr, "  BOTADMIN_FEED_URL          Live feed websocket URL")
	fmt.Fprintln(os.Stderr, "  BOTADMIN_LOG_LEVEL         Log file level")
}

type cli struct {
	st     *console.State
	db     *store.DB // nil when the state file could not be opened
	params console.Params
	json   bool
}

func (c *cli) run(cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(args)
	case "logout":
		return c.logout()
	case "status":
		return c.status()
	case "messages":
		return c.messages()
	case "sessions":
		return c.sessions()
	case "config":
		return c.config(args)
	case "tail":
		return c.tail()
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func (c *cli) requireLogin() error {
	if !c.st.Authenticated() {
		return fmt.Errorf("not logged in to profile %q, run botadminctl login", c.params.Profile)
	}
	return nil
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (c *cli) logout() error {
	if !c.st.Authenticated() {
		fmt.Println("Not logged in.")
		return nil
	}
	c.st.Logout()
	color.Green("Logged out of profile %q.", c.params.Profile)
	return nil
}

type statusOutput struct {
	Profile       string     `json:"profile"`
	APIURL        string     `json:"api_url"`
	FeedURL       string     `json:"feed_url"`
	StatePath     string     `json:"state_path"`
	Schema        uint       `json:"schema_version,omitempty"`
	StateError    string     `json:"state_error,omitempty"`
	Authenticated bool       `json:"authenticated"`
	UserID        uint       `json:"user_id,omitempty"`
	Role          string     `json:"role,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

func (c *cli) status() error {
	out := statusOutput{
		Profile:       c.params.Profile,
		APIURL:        c.params.Config.Server.APIURL,
		FeedURL:       c.params.Config.Server.FeedURL,
		StatePath:     profile.StatePath(c.params.Profile),
		Authenticated: c.st.Authenticated(),
	}
	if c.db == nil {
		out.StateError = "unavailable, credential kept in memory only"
	} else if v, err := c.db.SchemaVersion(); err != nil {
		out.StateError = err.Error()
	} else {
		out.Schema = v
	}
	var claimsErr error
	if out.Authenticated {
		claims, err := session.Inspect(c.st.Session.Credential())
		if err != nil {
			claimsErr = err
		} else {
			out.UserID = claims.UserID
			out.Role = claims.Role
			if exp := claims.Expiry(); !exp.IsZero() {
				out.ExpiresAt = &exp
				out.Expired = claims.Expired(time.Now())
			}
		}
	}

	if c.json {
		return outputJSON(out)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	green.Printf("  Profile:  ")
	fmt.Println(out.Profile)
	green.Printf("  API:      ")
	fmt.Println(out.APIURL)
	green.Printf("  Feed:     ")
	fmt.Println(out.FeedURL)
	if out.StateError != "" {
		yellow.Printf("  State:    ")
		fmt.Printf("%s (%s)\n", out.StatePath, out.StateError)
	} else {
		green.Printf("  State:    ")
		fmt.Printf("%s (schema v%d)\n", out.StatePath, out.Schema)
	}
	if !out.Authenticated {
		yellow.Printf("  Session:  ")
		fmt.Println("not logged in")
		return nil
	}
	green.Printf("  Session:  ")
	fmt.Println("logged in")
	if claimsErr != nil {
		yellow.Printf("  Token:    ")
		fmt.Printf("opaque (%v)\n", claimsErr)
		return nil
	}
	green.Printf("  User:     ")
	fmt.Printf("%d (%s)\n", out.UserID, out.Role)
	if out.ExpiresAt != nil {
		if out.Expired {
			yellow.Printf("  Expires:  ")
			color.Red("%s (expired)", out.ExpiresAt.Local().Format(time.RFC1123))
		} else {
			green.Printf("  Expires:  ")
			fmt.Println(out.ExpiresAt.Local().Format(time.RFC1123))
		}
	}
	return nil
}

func (c *cli) messages() error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	ctx, cancel := requestContext()
	defer cancel()
	if err := c.st.RefreshMessages(ctx); err != nil {
		return err
	}

	msgs := c.st.Messages()
	if c.json {
		return outputJSON(msgs)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return nil
	}
	cyan := color.New(color.FgCyan)
	for _, m := range msgs {
		cyan.Printf("%s ", m.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("%-16s %s\n", messages.Printable(m.Sender), messageText(m.MsgType, m.Content))
	}
	return nil
}

func (c *cli) sessions() error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	ctx, cancel := requestContext()
	defer cancel()
	if err := c.st.RefreshSessions(ctx); err != nil {
		return err
	}

	list := c.st.Sessions()
	if c.json {
		return outputJSON(list)
	}
	if len(list) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLATFORM\tNAME\tPLATFORM ID\tLAST ACTIVE")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Platform, s.PlatformName, s.PlatformID, s.LastActive.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

// stripJSONFlag accepts --json after the command name as well as before it.
func stripJSONFlag(args []string) ([]string, bool) {
	out := make([]string, 0, len(args))
	found := false
	for _, a := range args {
		if a == "--json" || a == "-json" {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
