package main

import (
	"fmt"
	"os"
	"todoBot/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var Version = "dev"

type rootOptions struct {
	configPath string
}

func (o *rootOptions) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.configPath, "config", "c", os.Getenv("TODOBOT_CONFIG"), "путь к config.yml (по умолчанию только окружение TODOBOT_*)")
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "todobot",
		Short:         "todobot - личный список задач через команды чата",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(execCmd(opts))
	rootCmd.AddCommand(migrateCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ошибка:", err)
		os.Exit(1)
	}
}
