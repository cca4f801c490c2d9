package main

import (
	"github.com/chrissnell/meeussunmoon/internal/app"
	"github.com/chrissnell/meeussunmoon/internal/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the REST server for the configured locations",
		Example: `  sunmoon serve --config config.yaml
  sunmoon serve --config-backend sqlite --config config.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := newConfigProvider(v)
			if err != nil {
				return err
			}
			defer provider.Close()

			application := app.New(provider, log.GetSugaredLogger(), settingsUpdate(v))
			return application.Run(cmd.Context())
		},
	}
}
