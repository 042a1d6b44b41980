package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/matheus3301/botadmin/internal/configcache"
	"github.com/matheus3301/botadmin/internal/configtree"
)

const secretMask = "********"

func (c *cli) config(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: botadminctl config <get|set|set-key>")
	}
	if err := c.requireLogin(); err != nil {
		return err
	}
	switch args[0] {
	case "get":
		return c.configGet(args[1:])
	case "set":
		return c.configSet(args[1:])
	case "set-key":
		return c.configSetKey(args[1:])
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func (c *cli) fetchConfig() (*configtree.Node, error) {
	ctx, cancel := requestContext()
	defer cancel()
	if err := c.st.RefreshConfig(ctx); err != nil {
		return nil, err
	}
	return c.st.Config.Snapshot(), nil
}

// configGet prints the full document. Structured output is unmasked so it
// can be edited and fed back to config set.
func (c *cli) configGet(args []string) error {
	fs := flag.NewFlagSet("config get", flag.ContinueOnError)
	asYAML := fs.Bool("yaml", false, "output YAML")
	asJSON := fs.Bool("json", c.json, "output JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	doc, err := c.fetchConfig()
	if err != nil {
		return err
	}

	switch {
	case *asYAML:
		data, err := doc.YAML()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	case *asJSON:
		return outputJSON(doc)
	}

	if doc.Len() == 0 {
		fmt.Println("Configuration is empty.")
		return nil
	}
	key := color.New(color.FgCyan)
	return doc.Mask(secretMask).Walk(func(path []string, leaf *configtree.Node) error {
		key.Printf("%s", strings.Join(path, "."))
		fmt.Printf(" = %s\n", leaf.Display())
		return nil
	})
}

func (c *cli) configSet(args []string) error {
	fs := flag.NewFlagSet("config set", flag.ContinueOnError)
	file := fs.String("f", "", "JSON or YAML document to upload")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("usage: botadminctl config set -f FILE")
	}

	doc, err := readDocument(*file)
	if err != nil {
		return err
	}
	if doc.Kind() != configtree.Object {
		return fmt.Errorf("%s: configuration must be an object, got %s", *file, doc.Kind())
	}
	return c.push(doc)
}

func (c *cli) configSetKey(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: botadminctl config set-key PATH VALUE")
	}
	path := configtree.SplitPath(args[0])
	if len(path) == 0 {
		return errors.New("empty path")
	}

	doc, err := c.fetchConfig()
	if err != nil {
		return err
	}
	if doc == nil {
		doc = configtree.NewObject()
	}
	if err := doc.SetPath(configtree.ParseScalar(args[1]), path...); err != nil {
		return err
	}
	return c.push(doc)
}

func (c *cli) push(doc *configtree.Node) error {
	ctx, cancel := requestContext()
	defer cancel()
	err := c.st.SaveConfig(ctx, doc)
	if errors.Is(err, configcache.ErrReconcile) {
		color.Yellow("Configuration saved, but reloading it failed: %v", err)
		return nil
	}
	if err != nil {
		return err
	}
	color.Green("Configuration saved.")
	return nil
}

func readDocument(path string) (*configtree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return configtree.ParseYAML(data)
	default:
		return configtree.ParseJSON(data)
	}
}
