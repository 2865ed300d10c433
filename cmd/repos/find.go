package main

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/utilitywarehouse/git-workspace/auth"
	"github.com/utilitywarehouse/git-workspace/config"
	"github.com/utilitywarehouse/git-workspace/provider"
	"github.com/utilitywarehouse/git-workspace/repo"
	"github.com/utilitywarehouse/git-workspace/sync"
)

func newFindCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Discover repositories, either already on disk or via a provider",
	}
	cmd.AddCommand(newFindLocalCmd())
	cmd.AddCommand(newFindRemoteCmd())
	return cmd
}

func newFindLocalCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "local <path>",
		Short: "List every repository found under path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			unmanaged, err := sync.FindUnmanagedIn(args[0])
			if err != nil {
				return err
			}
			if format == "yaml" {
				data, err := yaml.Marshal(unmanaged)
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			}
			for _, u := range unmanaged {
				fmt.Println(u)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text, yaml)")
	return cmd
}

func newFindRemoteCmd() *cobra.Command {
	var (
		providerName string
		tokenCommand string
		root         string
		apiURL       string
		format       string
		users        []string
		groups       []string
		owner        bool
	)

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Resolve a provider's projects into a tree-list config",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			kind, err := provider.KindFromString(providerName)
			if err != nil {
				return err
			}
			token, err := auth.TokenFromCommand(ctx, tokenCommand)
			if err != nil {
				return err
			}

			resolver := provider.New(kind, apiURL, token)
			filters := provider.Filters{Users: users, Groups: groups, Owner: owner}
			byNamespace, err := provider.Resolve(ctx, resolver, filters, logger)
			if err != nil {
				return err
			}

			spec := config.ProviderSpecConfig{Provider: providerName, Root: root}
			repos := provider.ToRepos(byNamespace, spec)

			out := config.FromRepos([]repo.Tree{{Root: root, Repos: repos}})
			var data []byte
			switch format {
			case "toml":
				data, err = toml.Marshal(out)
			default:
				data, err = yaml.Marshal(out)
			}
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&providerName, "provider", "", "github or gitlab")
	cmd.Flags().StringVar(&tokenCommand, "token-command", "", "shell command whose first stdout line is a bearer token")
	cmd.Flags().StringVar(&root, "root", "", "tree root the resolved repos are rooted at")
	cmd.Flags().StringVar(&apiURL, "api-url", "", "provider API base URL override")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format (yaml, toml)")
	cmd.Flags().StringArrayVar(&users, "user", nil, "resolve this user's projects (repeatable)")
	cmd.Flags().StringArrayVar(&groups, "group", nil, "resolve this group's projects (repeatable)")
	cmd.Flags().BoolVar(&owner, "owner", false, "resolve the token owner's own projects")
	_ = cmd.MarkFlagRequired("provider")
	_ = cmd.MarkFlagRequired("token-command")
	_ = cmd.MarkFlagRequired("root")

	return cmd
}
