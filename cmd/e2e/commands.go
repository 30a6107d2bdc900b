package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"signup-e2e/internal/application/port/input"
	"signup-e2e/internal/application/port/output"
	"signup-e2e/internal/config"
	"signup-e2e/internal/di"
	"signup-e2e/internal/infrastructure/env"
	"signup-e2e/internal/suite"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var errCasesFailed = errors.New("cases failed")

const redacted = "[redacted]"

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"environment":      "environment",
	"base-url":         "base_url",
	"browser":          "browser",
	"browser-bin":      "browser_bin",
	"install-browsers": "install_browsers",
	"headless":         "headless",
	"timeout":          "timeout",
	"case-timeout":     "case_timeout",
	"retry":            "retry.enabled",
	"max-retries":      "max_retries",
	"workers":          "workers",
	"strict-signup":    "strict_signup",
	"selector-file":    "selector_file",
	"artifact-dir":     "artifact_dir",
	"log-level":        "log.level",
	"log-file":         "log.file",
}

type app struct {
	v       *viper.Viper
	env     output.ConfigPort
	envDir  string
	noColor bool
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper(), out: os.Stdout}

	root := &cobra.Command{
		Use:           "e2e",
		Short:         "Browser end-to-end checks for sign-up and login",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.out = cmd.OutOrStdout()
			return a.loadEnv()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.envDir, "env-dir", ".", "directory holding .env and .env.<APP_ENV>")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	flags.String("environment", "", "target environment: staging or production")
	flags.String("base-url", "", "base URL, overrides the environment mapping")
	flags.String("browser", "", "browser to drive: chrome or firefox")
	flags.String("browser-bin", "", "Chromium executable")
	flags.Bool("install-browsers", false, "download the Playwright driver and Firefox first")
	flags.Bool("headless", false, "run the browser without a window")
	flags.Int("timeout", 0, "element wait timeout in seconds")
	flags.Int("case-timeout", 0, "bound on one attempt of a case in seconds, 0 for none")
	flags.Bool("retry", true, "retry failed cases")
	flags.Int("max-retries", 0, "retries per failed case")
	flags.Int("workers", 0, "cases run in parallel, one browser each")
	flags.Bool("strict-signup", false, "fail create_real_account when sign-up does not redirect")
	flags.String("selector-file", "", "YAML file overriding built-in selectors")
	flags.String("artifact-dir", "", "directory for failure artifacts")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-file", "", "rotated JSON log file")
	if err := bindFlags(a.v, flags); err != nil {
		panic(err)
	}

	root.AddCommand(a.runCmd(), a.listCmd(), a.configCmd())
	return root
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		f := flags.Lookup(flag)
		if f == nil {
			return fmt.Errorf("flag %s not defined", flag)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind %s: %w", flag, err)
		}
	}
	return nil
}

func (a *app) loadEnv() error {
	svc, err := env.NewEnvService(a.envDir)
	if err != nil {
		return err
	}
	a.env = svc
	if svc.GetBool("NO_COLOR", false) {
		a.noColor = true
	}
	return nil
}

func (a *app) config() (*config.Config, error) {
	return config.NewConfigFromViper(a.v)
}

func (a *app) runCmd() *cobra.Command {
	var filter input.RunFilter
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the selected cases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			c, err := di.NewContainer(cmd.Context(), cfg, di.Options{Output: a.out, NoColor: a.noColor})
			if err != nil {
				return err
			}
			defer c.Close()
			c.Logger.Debug("Environment loaded", "app_env", a.env.AppEnv(), "files", a.env.Loaded())

			report, err := c.Runner.Run(cmd.Context(), filter)
			if err != nil {
				return err
			}
			stats := c.Sessions.Stats()
			c.Logger.Info("Browser sessions",
				"provisioned", stats.Provisioned,
				"replaced", stats.Replaced,
				"disposed", stats.Disposed,
			)
			if !report.OK() {
				return fmt.Errorf("%d of %d %w", report.Failed, len(report.Outcomes), errCasesFailed)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&filter.Groups, "group", "g", nil, "run only cases in these groups")
	cmd.Flags().StringSliceVarP(&filter.Names, "case", "n", nil, "run only these cases")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases and their groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := suite.NewRegistry(suite.Settings{})
			if err != nil {
				return err
			}
			filter := input.RunFilter{}
			if group != "" {
				filter.Groups = []string{group}
			}
			names, err := reg.Select(filter)
			if err != nil {
				return err
			}
			for _, name := range names {
				groups := reg.GroupsOf(name)
				sort.Strings(groups)
				fmt.Fprintf(a.out, "%-34s %s\n", name, strings.Join(groups, ","))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "only list cases in this group")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.config(); err != nil {
				return err
			}
			settings := a.v.AllSettings()
			if login, ok := settings["login"].(map[string]any); ok && login["password"] != "" {
				login["password"] = redacted
			}
			enc := yaml.NewEncoder(a.out)
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
