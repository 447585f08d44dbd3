package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"userdesk/internal/views"
	"userdesk/pkg/client"
	"userdesk/pkg/domain"
)

// statusParam maps the --status values to the isActive query value.
func statusParam(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		return "", nil
	case "active", "true":
		return "true", nil
	case "inactive", "false":
		return "false", nil
	}
	return "", fmt.Errorf("status must be active, inactive or all, got %q", status)
}

// activeFilters describes the filters in p for the summary line.
func activeFilters(p client.Params) []string {
	var out []string
	if p.Q != "" {
		out = append(out, fmt.Sprintf("search %q", p.Q))
	}
	if p.Role != "" {
		out = append(out, "role "+p.Role)
	}
	switch p.IsActive {
	case "true":
		out = append(out, "active")
	case "false":
		out = append(out, "inactive")
	}
	return out
}

func totalPages(total, limit int) int {
	if limit < 1 {
		limit = client.DefaultPageSize
	}
	pages := (total + limit - 1) / limit
	if pages < 1 {
		return 1
	}
	return pages
}

func listCMD() *cobra.Command {
	var (
		p      client.Params
		status string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users with search, filters, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := jsonOutput(cmd)
			if err != nil {
				return err
			}
			if p.IsActive, err = statusParam(status); err != nil {
				return err
			}
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			res, err := c.List(cmd.Context(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{"total": res.Total, "users": res.Users})
			}
			return renderPage(out, res.Users, res.Total, p, totalPages(res.Total, p.Limit))
		},
	}
	cmd.Flags().IntVar(&p.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&p.Limit, "limit", client.DefaultPageSize, "page size")
	cmd.Flags().StringVar(&p.Sort, "sort", "", "sort field, e.g. name or email")
	cmd.Flags().StringVar(&p.Order, "order", "asc", "sort order: asc or desc")
	cmd.Flags().StringVarP(&p.Q, "query", "q", "", "search name, email and username")
	cmd.Flags().StringVar(&p.Role, "role", "", "filter by role")
	cmd.Flags().StringVar(&status, "status", "all", "filter by status: active, inactive or all")
	return cmd
}

func getCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := jsonOutput(cmd)
			if err != nil {
				return err
			}
			loc, err := location(cmd)
			if err != nil {
				return err
			}
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			u, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), u)
			}
			return views.RenderDetail(cmd.OutOrStdout(), u, loc)
		},
	}
}

func createCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user from field flags",
		Args:  cobra.NoArgs,
	}
	form := views.BindForm(cmd.Flags(), nil)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		loc, err := location(cmd)
		if err != nil {
			return err
		}
		form.SetLocation(loc)
		payload, err := form.CreatePayload()
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		u, err := c.Create(cmd.Context(), payload)
		if err != nil {
			return err
		}
		return printUser(cmd, "Created", u)
	}
	return cmd
}

func updateCMD() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change the fields given as flags",
		Args:  cobra.ExactArgs(1),
	}
	form := views.BindForm(cmd.Flags(), nil)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		loc, err := location(cmd)
		if err != nil {
			return err
		}
		form.SetLocation(loc)
		patch, err := form.Patch()
		if err != nil {
			return err
		}
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		u, err := c.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		return printUser(cmd, "Updated", u)
	}
	return cmd
}

func deleteCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return err
		},
	}
}

func printUser(cmd *cobra.Command, verb string, u domain.User) error {
	asJSON, err := jsonOutput(cmd)
	if err != nil {
		return err
	}
	loc, err := location(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, u)
	}
	if _, err := fmt.Fprintf(out, "%s %s\n", verb, u.ID); err != nil {
		return err
	}
	return views.RenderDetail(out, u, loc)
}
