package main

import (
	"errors"
	"fmt"
	"strings"
	"todoBot/internal/app"
	"todoBot/internal/logger"

	"github.com/spf13/cobra"
)

func execCmd(opts *rootOptions) *cobra.Command {
	var (
		user    string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "exec <команда> [аргументы...]",
		Short: "Выполнить одну команду бота и напечатать ответ",
		Long: `Выполняет команду так же, как её выполнил бы чат, и печатает ответ.

Примеры:
  todobot exec --user 42 add купить хлеб
  todobot exec --user 42 /list
  todobot exec --user 42 done 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(user) == "" {
				return errors.New("--user не может быть пустым")
			}

			cfg, err := opts.load()
			if err != nil {
				return err
			}
			if verbose {
				if err := logger.Init(true); err != nil {
					return err
				}
				defer logger.Sync()
			}

			a := app.New(cfg)
			defer a.Close()
			if err := a.InitCore(cmd.Context()); err != nil {
				return err
			}

			reply := a.Dispatcher().Handle(cmd.Context(), user, args[0], args[1:])
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			if reply.Code != "" {
				return fmt.Errorf("команда завершилась с кодом %s", reply.Code)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "id пользователя")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "писать лог в stderr")
	_ = cmd.MarkFlagRequired("user")
	// аргументы команды вроде "-1" не должны считаться флагами
	cmd.Flags().SetInterspersed(false)
	return cmd
}
