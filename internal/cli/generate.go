package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rosmsg-packages/internal/app"
)

type generateOptions struct {
	SearchRoot string
	Python     string
}

func newGenerateCommand() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:     "generate-message-package <path>",
		Aliases: []string{"genmsg"},
		Short:   "Generate Python message modules in a package directory",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.SearchRoot, "search", "s", ".", "Directory searched for referenced message packages")
	cmd.Flags().StringVar(&opts.Python, "python", "python3", "Python interpreter for codegen")

	_ = viper.BindPFlag("search", cmd.Flags().Lookup("search"))

	return cmd
}

func runGenerate(ctx context.Context, cmd *cobra.Command, path string, opts generateOptions) error {
	service, err := newAppService(app.Options{
		Python: resolveString(cmd, opts.Python, "python", "python"),
	})
	if err != nil {
		return err
	}
	result, err := service.GenerateMessagePackage(ctx, app.GenerateRequest{
		Path:       path,
		SearchRoot: resolveString(cmd, opts.SearchRoot, "search", "search"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("generated %s (%d derived messages)\n", result.Package, len(result.Derived))
	return nil
}
