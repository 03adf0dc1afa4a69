package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/repokit/internal/domain"
	"github.com/bft-labs/repokit/pkg/repository"
)

func toModels(notes []domain.Note) []domain.NoteModel {
	out := make([]domain.NoteModel, 0, len(notes))
	for _, n := range notes {
		out = append(out, domain.NoteToModel(n))
	}
	return out
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			notes, err := d.repo.GetAll(cmd.Context()).Unwrap()
			if err != nil {
				return err
			}
			return c.print(toModels(notes))
		},
	}
}

func newGetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			note, err := d.repo.GetByID(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}
			return c.print(domain.NoteToModel(note))
		},
	}
}

func newCreateCmd(c *cli) *cobra.Command {
	var (
		title string
		body  string
		tags  []string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			note, err := d.repo.Create(cmd.Context(), domain.NewNote(title, body, tags)).Unwrap()
			if err != nil {
				return err
			}
			return c.print(domain.NoteToModel(note))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&body, "body", "", "note body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "tag (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var (
		title string
		body  string
		tags  []string
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the title, body or tags of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			note, err := d.repo.GetByID(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("title") {
				note.Title = title
			}
			if flags.Changed("body") {
				note.Body = body
			}
			if flags.Changed("tag") {
				note.Tags = tags
			}
			note.UpdatedAt = time.Now().UTC()

			note, err = d.repo.Update(cmd.Context(), note).Unwrap()
			if err != nil {
				return err
			}
			return c.print(domain.NoteToModel(note))
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&body, "body", "", "new body")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "replacement tags (repeatable)")
	return cmd
}

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := d.repo.Delete(cmd.Context(), args[0]).Unwrap(); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func newSearchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Find notes whose title, body or tags match a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			notes, err := d.repo.Search(cmd.Context(), args[0]).Unwrap()
			if err != nil {
				return err
			}
			return c.print(toModels(notes))
		},
	}
}

func newPageCmd(c *cli) *cobra.Command {
	page := repository.PageRequest{Page: 1, Limit: 20}
	cmd := &cobra.Command{
		Use:   "page",
		Short: "List one page of notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := c.wire(cmd.Context())
			if err != nil {
				return err
			}
			notes, err := d.repo.GetPaginated(cmd.Context(), page).Unwrap()
			if err != nil {
				return err
			}
			return c.print(toModels(notes))
		},
	}
	cmd.Flags().IntVar(&page.Page, "page", page.Page, "page number, starting at 1")
	cmd.Flags().IntVar(&page.Limit, "limit", page.Limit, "notes per page")
	cmd.Flags().StringVar(&page.SortBy, "sort", "", "field to sort by (remote only)")
	cmd.Flags().BoolVar(&page.Descending, "desc", false, "reverse the order")
	return cmd
}
