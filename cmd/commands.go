package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ghexplorer/favorites"
	"ghexplorer/logger"
	"ghexplorer/models"
	"ghexplorer/render"
	"ghexplorer/server"
	"ghexplorer/stats"
	"ghexplorer/tui"
)

func searchCmd(a *app) *cobra.Command {
	var (
		language string
		sortKey  string
		order    string
		page     int
		perPage  int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search repositories",
		Long: `Searches GitHub repositories. Without a query the most starred
repositories are listed.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if perPage == 0 {
				perPage = a.cfg.PageSize
			}
			filters := models.SearchFilters{
				Language: language,
				Sort:     models.SortKey(sortKey),
				Order:    models.SortOrder(order),
				Page:     page,
				PerPage:  perPage,
			}
			result, err := a.svc.Search(cmd.Context(), strings.Join(args, " "), filters)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result, func() string {
				return render.SearchSummary(result, page, perPage) + "\n\n" +
					render.RepositoryList(result.Items, a.now())
			})
		},
	}

	cmd.Flags().StringVarP(&language, "language", "l", models.LanguageAll, "Language filter")
	cmd.Flags().StringVarP(&sortKey, "sort", "s", string(models.SortStars), "Sort by stars, forks, updated or created")
	cmd.Flags().StringVarP(&order, "order", "o", string(models.OrderDesc), "Sort order, asc or desc")
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page")
	cmd.Flags().IntVar(&perPage, "per-page", 0, "Results per page (default from PAGE_SIZE)")
	return cmd
}

func userCmd(a *app) *cobra.Command {
	var sortBy string

	cmd := &cobra.Command{
		Use:   "user <login>",
		Short: "Show a user profile with repository statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			by, err := stats.ParseRepoSort(sortBy)
			if err != nil {
				return err
			}
			profile, err := a.svc.UserProfile(cmd.Context(), args[0], by)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), profile, func() string {
				return render.UserCard(profile, a.now()) + "\n\n" +
					render.RepositoryList(profile.Repositories, a.now())
			})
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(stats.RepoSortUpdated), "Sort repositories by updated, stars, forks or name")
	return cmd
}

func repoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repo <owner/name>",
		Short: "Show repository details, languages and activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, err := splitFullName(args[0])
			if err != nil {
				return err
			}
			detail, err := a.svc.RepositoryDetail(cmd.Context(), owner, name)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), detail, func() string {
				return render.RepositoryDetail(detail, a.now())
			})
		},
	}
}

func favoritesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "Manage favorite repositories and users",
	}
	cmd.AddCommand(
		favoritesListCmd(a),
		favoritesAddCmd(a),
		favoritesRemoveCmd(a),
		favoritesClearCmd(a),
	)
	return cmd
}

func favoritesListCmd(a *app) *cobra.Command {
	var kind, sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var k models.FavoriteKind
			if kind != "" && kind != "all" {
				parsed, err := models.ParseFavoriteKind(kind)
				if err != nil {
					return err
				}
				k = parsed
			}
			by, err := favorites.ParseSortBy(sortBy)
			if err != nil {
				return err
			}

			store := a.svc.Favorites()
			list := favorites.Sort(favorites.Filter(store.List(), k), by)
			return a.print(cmd.OutOrStdout(), list, func() string {
				c := store.Counts()
				return render.Subtle(fmt.Sprintf("%d favorites · %d repositories · %d users", c.Total, c.Repositories, c.Users)) +
					"\n\n" + render.FavoritesTable(list, a.now())
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "type", "t", "all", "all, repositories or users")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", string(favorites.SortRecent), "recent, name or stars")
	return cmd
}

func favoritesAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <repo|user> <owner/name|login>",
		Short: "Add a repository or user to the favorites",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseFavoriteKind(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store := a.svc.Favorites()

			var added bool
			switch kind {
			case models.KindRepository:
				owner, name, err := splitFullName(args[1])
				if err != nil {
					return err
				}
				repo, err := a.svc.Repository(ctx, owner, name)
				if err != nil {
					return err
				}
				added = store.AddRepository(ctx, *repo)
			case models.KindUser:
				user, err := a.svc.User(ctx, args[1])
				if err != nil {
					return err
				}
				added = store.AddUser(ctx, *user)
			}

			if !added {
				fmt.Fprintln(cmd.OutOrStdout(), render.Warning(args[1]+" is already a favorite"))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Added "+args[1]))
			return nil
		},
	}
}

func favoritesRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <repo|user> <owner/name|login>",
		Short: "Remove a favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := models.ParseFavoriteKind(args[0])
			if err != nil {
				return err
			}
			if !a.svc.Favorites().Remove(cmd.Context(), kind, args[1]) {
				return fmt.Errorf("%s is not a favorite", args[1])
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Removed "+args[1]))
			return nil
		},
	}
}

func favoritesClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear %d favorites without --yes", a.svc.Favorites().Counts().Total)
			}
			a.svc.Favorites().Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), render.Success("Cleared all favorites"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing every favorite")
	return cmd
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the explorer API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.ServerAddr
			}
			return server.New(a.svc).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SERVER_ADDR)")
	return cmd
}

func browseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Search repositories interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// the alternate screen owns the terminal; keep log lines off it
			logger.Set(zap.NewNop())

			ctrl := a.svc.NewController()
			defer ctrl.Close()
			return tui.Run(cmd.Context(), ctrl)
		},
	}
}

func splitFullName(s string) (owner, name string, err error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected owner/name, got %q", s)
	}
	return parts[0], parts[1], nil
}
