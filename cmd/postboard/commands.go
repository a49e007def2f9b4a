package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/samvad-hq/postboard/internal/app"
	"github.com/samvad-hq/postboard/internal/config"
	"github.com/samvad-hq/postboard/internal/domain"
	"github.com/samvad-hq/postboard/pkg/posts"
)

func newRootCommand(a *app.App, cfg *config.Config) *cobra.Command {
	var userID string

	root := &cobra.Command{
		Use:           "postboard",
		Short:         "Browse and edit posts on a JSONPlaceholder-style API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&userID, "user", cfg.DefaultUserID, "user id the post list is scoped to")

	root.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the user's posts",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				board := a.BoardFor(userID)
				if err := app.Wait(cmd.Context(), board.Load(cmd.Context())); err != nil {
					return fmt.Errorf("list posts: %w", err)
				}
				printPosts(cmd.OutOrStdout(), board.Posts())
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a single post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, err := a.API.Get(cmd.Context(), args[0]).Await(cmd.Context())
				if err != nil {
					return fmt.Errorf("show post %s: %w", args[0], err)
				}
				post, err := posts.ParseEnvelope(env, false)
				if err != nil {
					return fmt.Errorf("show post %s: %w", args[0], err)
				}
				printPosts(cmd.OutOrStdout(), []domain.Post{post})
				return nil
			},
		},
		newCreateCommand(a, &userID),
		newEditCommand(a, &userID),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				board := a.BoardFor(userID)
				if err := app.Wait(cmd.Context(), board.Load(cmd.Context())); err != nil {
					return fmt.Errorf("load posts: %w", err)
				}
				if err := app.Wait(cmd.Context(), board.Delete(cmd.Context(), args[0])); err != nil {
					return fmt.Errorf("delete post %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted post %s\n", args[0])
				return nil
			},
		},
	)
	return root
}

func newCreateCommand(a *app.App, userID *string) *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			board := a.BoardFor(*userID)
			if err := app.Wait(cmd.Context(), board.Create(cmd.Context(), title, body)); err != nil {
				return fmt.Errorf("create post: %w", err)
			}
			list := board.Posts()
			if len(list) == 0 {
				return errors.New("create post: server copy missing")
			}
			printPosts(cmd.OutOrStdout(), list[len(list)-1:])
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&body, "body", "", "post body")
	return cmd
}

func newEditCommand(a *app.App, userID *string) *cobra.Command {
	var title, body string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a post's title and body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board := a.BoardFor(*userID)
			if err := app.Wait(cmd.Context(), board.Load(cmd.Context())); err != nil {
				return fmt.Errorf("load posts: %w", err)
			}
			if err := app.Wait(cmd.Context(), board.Edit(cmd.Context(), args[0], title, body)); err != nil {
				return fmt.Errorf("edit post %s: %w", args[0], err)
			}
			post, _ := board.Find(args[0])
			printPosts(cmd.OutOrStdout(), []domain.Post{post})
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	return cmd
}

func printPosts(w io.Writer, list []domain.Post) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("ID", "USER", "TITLE", "BODY", "LOCAL")
	tbl.WithWriter(w).WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)

	for _, p := range list {
		local := ""
		if p.CreatedManually {
			local = "yes"
		}
		tbl.AddRow(p.ID, p.UserID, p.Title, firstLine(p.Body), local)
	}
	tbl.Print()
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i] + " ..."
		}
	}
	return s
}
