package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/johanforsgren/mantella/internal/session"
)

func newCollectivesCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:     "collectives",
		Aliases: []string{"ls"},
		Short:   "List collectives and their pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := svc()
			if _, err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			collectives, err := s.Collectives(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTree(collectives, s.Pages))
			return nil
		},
	}
}

func newPagesCmd(svc func() *session.Service) *cobra.Command {
	return &cobra.Command{
		Use:   "pages <collective>",
		Short: "List the pages of one collective",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := svc()
			if _, err := s.Refresh(cmd.Context()); err != nil {
				return err
			}
			if s.NameAvailable(args[0]) {
				return fmt.Errorf("collective %q not found", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatPages(s.Pages(args[0])))
			return nil
		},
	}
}

func newPeopleCmd(svc func() *session.Service) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List users and groups a collective can be shared with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			people, err := svc().People(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatPeople(people))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum entries per list (default from config)")
	return cmd
}

func newCreateCmd(svc func() *session.Service) *cobra.Command {
	var (
		emoji  string
		users  []string
		groups []string
	)

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a collective and share it",
		Long: "Creates a collective and shares it with full permissions with every " +
			"--user and --group given. You are never shared with yourself.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")

			id, err := svc().CreateCollective(cmd.Context(), title, emoji, users, groups)
			if err != nil {
				if id != 0 {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s collective %d was created, but not every step finished\n",
						WarningStyle.Render("!"), id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s created %s %s\n",
				SuccessStyle.Render("✓"), strings.TrimSpace(emoji+" "+CollectiveStyle.Render(strings.TrimSpace(title))),
				CountStyle.Render(fmt.Sprintf("(id %d)", id)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&emoji, "emoji", "e", "", "emoji shown next to the collective")
	cmd.Flags().StringSliceVarP(&users, "user", "u", nil, "user to share with (repeatable)")
	cmd.Flags().StringSliceVarP(&groups, "group", "g", nil, "group to share with (repeatable)")
	return cmd
}
