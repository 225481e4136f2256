package main

import (
	"fmt"
	"os"

	"github.com/Cyclone1070/secondbrain/internal/config"
	"github.com/Cyclone1070/secondbrain/internal/ui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// defaultEnvFile is loaded from the current directory when present.
const defaultEnvFile = ".env"

func processGlobalFlags(cmd *cobra.Command, d *deps) error {
	flags := cmd.Root().PersistentFlags()

	if debug, _ := flags.GetBool("debug"); debug {
		d.logger.SetLevel(logrus.DebugLevel)
	}

	if l, _ := flags.GetString("log-level"); l != "" {
		lvl, err := logrus.ParseLevel(l)
		if err != nil {
			return err
		}
		d.logger.SetLevel(lvl)
	}

	logFormat, _ := flags.GetString("log-format")
	switch logFormat {
	case "json":
		d.logger.SetFormatter(new(logrus.JSONFormatter))
	case "text":
		// logrus uses text format by default.
	default:
		return fmt.Errorf("unsupported log-format: %q", logFormat)
	}
	return nil
}

func loadConfig(cmd *cobra.Command, d *deps) error {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path != "" {
		cfg, err := config.NewLoader().LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		d.cfg = cfg
		return nil
	}

	cfg, err := d.loadConfig()
	if err != nil {
		d.logger.WithError(err).Warn("failed to load config, using defaults")
		cfg = config.DefaultConfig()
	}
	d.cfg = cfg
	return nil
}

func newApp(d *deps) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "brain",
		Short: "Ask questions about your notes and let an agent work on them",
		Example: `  Index the vault named by VAULT_PATH:
  $ brain ingest

  Ask a question:
  $ brain ask "what did I decide about the garden?"

  Let the agent tidy a folder:
  $ brain agent --workdir ~/notes/inbox "summarise every note into summary.md"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "", "Set the logging level [trace, debug, info, warn, error]")
	rootCmd.PersistentFlags().String("log-format", "text", "Set the logging format [text, json]")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug mode")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file (default ~/.config/brain/config.json)")
	rootCmd.PersistentFlags().String("env-file", defaultEnvFile, "Dotenv file with API keys")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		if err := processGlobalFlags(cmd, d); err != nil {
			return err
		}
		if err := loadConfig(cmd, d); err != nil {
			return err
		}
		envFile, _ := cmd.Root().PersistentFlags().GetString("env-file")
		secrets, err := d.loadSecrets(envFile)
		if err != nil {
			return err
		}
		d.secrets = secrets
		d.printer = ui.NewPrinter(d.stdout, d.styled)
		return nil
	}

	rootCmd.SetIn(d.stdin)
	rootCmd.SetOut(d.stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(
		newAskCommand(d),
		newChatCommand(d),
		newAgentCommand(d),
		newIngestCommand(d),
	)
	return rootCmd
}
