package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/androiddevnotesforks/Rays-Android/internal/prefs"
)

func newPrefsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				out, err := yaml.Marshal(a.prefs.Get())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one preference",
		Long:      "Known keys: " + strings.Join(prefs.Keys(), ", ") + ". Keyword lists are comma separated.",
		Args:      cobra.ExactArgs(2),
		ValidArgs: prefs.Keys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				if _, err := a.prefs.Set(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
				return nil
			})
		},
	}
	cmd.AddCommand(set)
	return cmd
}

func newDomainsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List the columns searches look in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(func(a *app) error {
				for _, d := range a.lib.SearchDomains() {
					state := "off"
					if d.Enabled {
						state = "on"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", d.Table+"."+d.Column, state)
				}
				return nil
			})
		},
	}

	toggle := func(use string, enabled bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <table.column>",
			Short: strings.ToUpper(use[:1]) + use[1:] + " a search domain",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				table, column, ok := strings.Cut(args[0], ".")
				if !ok {
					return fmt.Errorf("expected table.column, got %q", args[0])
				}
				return c.withApp(func(a *app) error {
					return a.lib.SetSearchDomain(table, column, enabled)
				})
			},
		}
	}
	cmd.AddCommand(toggle("enable", true), toggle("disable", false))
	return cmd
}
