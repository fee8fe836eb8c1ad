package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"rosmsg-packages/internal/app"
)

type buildOptions struct {
	ListPath       string
	StoreDir       string
	NoIndex        bool
	SearchRoots    []string
	DiagnosticsDir string
	MetricsFile    string
	RemoteBranches []string
	FetchRemote    bool
	Python         string
	LegacyPython   string
	ArchiveURL     string
	HTTPTimeoutSec int
	HTTPRetries    int
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build [target]",
		Short: "Build and store Python distributions for the package list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runBuild(cmd.Context(), cmd, target, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ListPath, "list", "l", "packages.yaml", "Package list file")
	cmd.Flags().StringVarP(&opts.StoreDir, "index", "i", "index", "Artifact store directory")
	cmd.Flags().BoolVar(&opts.NoIndex, "no-index", false, "Skip index.html generation and remote lookup")
	cmd.Flags().StringSliceVar(&opts.SearchRoots, "search-root", nil, "Extra directories searched for referenced message packages")
	cmd.Flags().StringVar(&opts.DiagnosticsDir, "diagnostics-dir", ".", "Directory receiving .new/.org copies on content mismatch")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().StringSliceVar(&opts.RemoteBranches, "remote-branch", []string{"Darwin"}, "Remote branches scanned for published artifacts")
	cmd.Flags().BoolVar(&opts.FetchRemote, "fetch-remote", true, "Fetch origin before scanning remote branches")
	cmd.Flags().StringVar(&opts.Python, "python", "python3", "Python interpreter for codegen and packaging")
	cmd.Flags().StringVar(&opts.LegacyPython, "python2", "python2", "Legacy interpreter for the extra wheel")
	cmd.Flags().StringVar(&opts.ArchiveURL, "archive-url", "https://github.com", "Base URL of repository archives")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retry count")

	_ = viper.BindPFlag("list", cmd.Flags().Lookup("list"))
	_ = viper.BindPFlag("index", cmd.Flags().Lookup("index"))
	_ = viper.BindPFlag("no_index", cmd.Flags().Lookup("no-index"))
	_ = viper.BindPFlag("search_roots", cmd.Flags().Lookup("search-root"))
	_ = viper.BindPFlag("diagnostics_dir", cmd.Flags().Lookup("diagnostics-dir"))
	_ = viper.BindPFlag("metrics_file", cmd.Flags().Lookup("metrics-file"))
	_ = viper.BindPFlag("remote_branches", cmd.Flags().Lookup("remote-branch"))
	_ = viper.BindPFlag("fetch_remote", cmd.Flags().Lookup("fetch-remote"))
	_ = viper.BindPFlag("python", cmd.Flags().Lookup("python"))
	_ = viper.BindPFlag("python2", cmd.Flags().Lookup("python2"))
	_ = viper.BindPFlag("archive_url", cmd.Flags().Lookup("archive-url"))
	_ = viper.BindPFlag("http_timeout", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, target string, opts buildOptions) error {
	storeDir := resolveString(cmd, opts.StoreDir, "index", "index")
	service, err := newAppService(app.Options{
		Python:         resolveString(cmd, opts.Python, "python", "python"),
		LegacyPython:   resolveString(cmd, opts.LegacyPython, "python2", "python2"),
		ArchiveBaseURL: resolveString(cmd, opts.ArchiveURL, "archive_url", "archive-url"),
		HTTPTimeoutSec: resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout", "http-timeout"),
		HTTPRetries:    resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
		RemoteDir:      storeDir,
		RemoteBranches: resolveStrings(cmd, opts.RemoteBranches, "remote_branches", "remote-branch"),
		FetchRemote:    resolveBool(cmd, opts.FetchRemote, "fetch_remote", "fetch-remote"),
	})
	if err != nil {
		return err
	}
	result, err := service.Build(ctx, app.BuildRequest{
		ListPath:       resolveString(cmd, opts.ListPath, "list", "list"),
		StoreDir:       storeDir,
		Target:         target,
		NoIndex:        resolveBool(cmd, opts.NoIndex, "no_index", "no-index"),
		SearchRoots:    resolveStrings(cmd, opts.SearchRoots, "search_roots", "search-root"),
		DiagnosticsDir: resolveString(cmd, opts.DiagnosticsDir, "diagnostics_dir", "diagnostics-dir"),
		MetricsFile:    resolveString(cmd, opts.MetricsFile, "metrics_file", "metrics-file"),
	})
	if err != nil {
		return err
	}
	for _, pkg := range result.Packages {
		fmt.Printf("%s: %s %s\n", pkg.Package, pkg.Outcome, pkg.Source.Filename)
	}
	return nil
}

func newAppService(opts app.Options) (app.Service, error) {
	return app.NewService(opts)
}
