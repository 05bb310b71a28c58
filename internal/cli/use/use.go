// Package use holds the commands that set the default workspace, project and
// user, e.g. ticks use project ...
package use

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thenoetrevino/ticks/internal/cli"
	"github.com/thenoetrevino/ticks/internal/config"
)

// UseCmd returns the use parent command
func UseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use",
		Short: "Set the default workspace, project and user",
		Long: `Set defaults so other commands do not need --workspace, --project or a user.

Values are saved in the config file. The TICKS_WORKSPACE, TICKS_PROJECT and
TICKS_USER_ID environment variables still take precedence.

Examples:
  ticks use workspace acme
  ticks use project 4f0c2a
  ticks use user 9d1e77
  ticks use --show`,
		Args: cobra.NoArgs,
		RunE: runShow,
	}
	cmd.Flags().Bool("show", false, "Show the current defaults")
	cli.AddOutputFlags(cmd)

	cmd.AddCommand(settingCmd("workspace", "Set the default workspace slug", func(c *config.Config) *string { return &c.Workspace }))
	cmd.AddCommand(settingCmd("project", "Set the default project ID", func(c *config.Config) *string { return &c.Project }))
	cmd.AddCommand(settingCmd("user", "Set the acting user ID", func(c *config.Config) *string { return &c.User.ID }))

	return cmd
}

// defaults is the JSON shape of the current settings
type defaults struct {
	Workspace string `json:"workspace"`
	Project   string `json:"project"`
	User      string `json:"user"`
	BaseURL   string `json:"base_url"`
}

func runShow(cmd *cobra.Command, args []string) error {
	out := cli.NewFormatter(cmd)
	cfg, err := config.Load()
	if err != nil {
		_ = out.Error("CONFIG_ERROR", err.Error())
		return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
	}

	d := defaults{Workspace: cfg.Workspace, Project: cfg.Project, User: cfg.User.ID, BaseURL: cfg.Server.BaseURL}
	if !out.Human() {
		return out.Success(d)
	}
	fmt.Fprintf(out.Out, "workspace: %s\nproject:   %s\nuser:      %s\nserver:    %s\n",
		orUnset(d.Workspace), orUnset(d.Project), orUnset(d.User), d.BaseURL)
	return nil
}

func settingCmd(name, short string, field func(*config.Config) *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " [value]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cli.NewFormatter(cmd)
			clearFlag, _ := cmd.Flags().GetBool("clear")
			if len(args) == 0 && !clearFlag {
				return out.Usage("MISSING_VALUE", name+" value is required", "Pass a value or --clear")
			}

			cfg, err := config.LoadFile()
			if err != nil {
				_ = out.Error("CONFIG_ERROR", err.Error())
				return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
			}

			value := ""
			if !clearFlag {
				value = args[0]
			}
			*field(cfg) = value
			if err := cfg.Save(); err != nil {
				_ = out.Error("CONFIG_ERROR", err.Error())
				return &cli.ExitStatusError{Code: cli.ExitError, Err: err}
			}

			if value == "" {
				fmt.Fprintf(out.Err, "Cleared default %s\n", name)
				return nil
			}
			fmt.Fprintf(out.Err, "Using %s %s\n", name, value)
			return nil
		},
	}
	cmd.Flags().Bool("clear", false, "Clear the default "+name)
	return cmd
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
