package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"userdesk/internal/views"
	"userdesk/pkg/client"
	"userdesk/pkg/domain"
)

const browseHelp = `Type to search. Commands:
  :role [NAME]       filter by role, no name clears
  :status [VALUE]    active, inactive or all
  :sort FIELD        sort by FIELD, again to flip the order
  :next  :prev       move one page
  :page N            jump to page N
  :show ID           show one user
  :delete ID         delete a user
  :help              this text
  :quit              leave`

func browseCMD() *cobra.Command {
	var (
		debounce time.Duration
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Interactive list with live search",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := location(cmd)
			if err != nil {
				return err
			}
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			b := newBrowser(c, cmd.OutOrStdout(), loc,
				client.WithDebounce(debounce), client.WithPageSize(limit))
			return b.run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", client.DefaultDebounce, "search quiescence delay")
	cmd.Flags().IntVar(&limit, "limit", client.DefaultPageSize, "page size")
	return cmd
}

// browser renders the list whenever the query state changes. Settled search
// input arrives from the debounce timer, every other change from the input
// loop; both are serialised through refresh.
type browser struct {
	client  *client.Client
	out     io.Writer
	loc     *time.Location
	state   *client.QueryState
	refresh chan client.Params
	rows    int
}

func newBrowser(c *client.Client, out io.Writer, loc *time.Location, opts ...client.StateOption) *browser {
	b := &browser{client: c, out: out, loc: loc, refresh: make(chan client.Params, 1)}
	b.state = client.NewQueryState(b.queue, opts...)
	return b
}

// queue keeps only the latest pending parameters.
func (b *browser) queue(p client.Params) {
	for {
		select {
		case b.refresh <- p:
			return
		default:
		}
		select {
		case <-b.refresh:
		default:
		}
	}
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	defer b.state.Close()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintln(b.out, browseHelp)
	if err := b.render(ctx, b.state.Params()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p := <-b.refresh:
			if err := b.render(ctx, p); err != nil {
				return err
			}
		case line, ok := <-lines:
			if !ok {
				b.state.Flush()
				return b.drain(ctx)
			}
			quit, err := b.handle(ctx, line)
			if err != nil {
				fmt.Fprintf(b.out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			if err := b.drain(ctx); err != nil {
				return err
			}
		}
	}
}

// drain renders a change queued by the last command, if any.
func (b *browser) drain(ctx context.Context) error {
	select {
	case p := <-b.refresh:
		return b.render(ctx, p)
	default:
		return nil
	}
}

func (b *browser) handle(ctx context.Context, line string) (quit bool, err error) {
	if !strings.HasPrefix(line, ":") {
		b.state.SetSearch(line)
		return false, nil
	}
	name, arg, _ := strings.Cut(strings.TrimSpace(line[1:]), " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "quit", "q":
		return true, nil
	case "help":
		fmt.Fprintln(b.out, browseHelp)
	case "role":
		b.state.SetRole(arg)
	case "status":
		status, err := statusParam(arg)
		if err != nil {
			return false, err
		}
		b.state.SetStatus(status)
	case "sort":
		if arg == "" {
			return false, fmt.Errorf(":sort needs a field")
		}
		b.state.ToggleSort(arg)
	case "next":
		b.state.Next()
	case "prev":
		b.state.Prev()
	case "page":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return false, fmt.Errorf(":page needs a number, got %q", arg)
		}
		b.state.SetPage(n)
	case "show":
		u, err := b.client.Get(ctx, arg)
		if err != nil {
			return false, err
		}
		return false, views.RenderDetail(b.out, u, b.loc)
	case "delete":
		if err := b.client.Delete(ctx, arg); err != nil {
			return false, err
		}
		fmt.Fprintf(b.out, "Deleted %s\n", arg)
		b.state.AfterDelete(b.rows)
	default:
		return false, fmt.Errorf("unknown command :%s", name)
	}
	return false, nil
}

func (b *browser) render(ctx context.Context, p client.Params) error {
	res, err := b.client.List(ctx, p)
	if err != nil {
		fmt.Fprintf(b.out, "error: %v\n", err)
		return nil
	}
	b.state.SetTotal(res.Total)
	b.rows = len(res.Users)
	fmt.Fprintln(b.out)
	return renderPage(b.out, res.Users, res.Total, p, b.state.TotalPages())
}

func renderPage(w io.Writer, users []domain.User, total int, p client.Params, pages int) error {
	if err := views.RenderSummary(w, total, p.Page, pages, activeFilters(p)); err != nil {
		return err
	}
	if err := views.RenderList(w, users, p.Sort, p.Order); err != nil {
		return err
	}
	return views.RenderPagination(w, p.Page, pages)
}
