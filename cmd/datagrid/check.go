package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stef-k/datagrid/internal/database/repository"
	"github.com/stef-k/datagrid/internal/service"
)

func checkCmd(f *flags) *cobra.Command {
	var width, height int
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a headless pass over the grid and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, *f)
			if err != nil {
				return err
			}
			defer e.Close()
			return runCheck(ctx, cmd.OutOrStdout(), e.svc, width, height)
		},
	}
	cmd.Flags().IntVar(&width, "width", 120, "simulated terminal width")
	cmd.Flags().IntVar(&height, "height", 30, "simulated viewport height in rows")
	return cmd
}

func importCmd(f *flags) *cobra.Command {
	var save bool
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import records from CSV (name,category,quantity,price,active,notes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(ctx, *f)
			if err != nil {
				return err
			}
			defer e.Close()
			if err := e.svc.Load(ctx, repository.RecordFilters{}); err != nil {
				return err
			}
			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			res, err := e.svc.ImportCSV(ctx, in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "imported %d, skipped %d\n", res.Imported, res.Skipped)
			for _, msg := range res.Errors {
				fmt.Fprintf(out, "  %s\n", msg)
			}
			if !save {
				return nil
			}
			saved, err := e.svc.Save(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "saved %d new records\n", saved.Inserted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", true, "write imported records to the database")
	return cmd
}

// runCheck loads every record, then sorts, pages, edits and undoes against the engine
// the way the TUI would, reporting each step.
func runCheck(ctx context.Context, w io.Writer, svc *service.GridService, cols, rows int) error {
	eng := svc.Engine
	if err := svc.Load(ctx, repository.RecordFilters{}); err != nil {
		return err
	}
	fmt.Fprintf(w, "records:     %d\n", len(eng.Items()))

	widths := eng.Resize(float64(cols - len(eng.VisibleColumns()) + 1))
	var parts []string
	for _, c := range eng.VisibleColumns() {
		parts = append(parts, fmt.Sprintf("%s=%d", c.ID, int(math.Floor(widths[c.ID]))))
	}
	fmt.Fprintf(w, "widths:      %s\n", strings.Join(parts, " "))

	eng.Scroll(0, float64(rows))
	first, last := eng.VisibleRange()
	fmt.Fprintf(w, "window:      virtualized=%t rows %d..%d of %d\n", eng.Virtualized(), first, last, len(eng.Display()))

	if _, err := eng.ToggleSort("price"); err != nil {
		return err
	}
	if _, err := eng.ToggleSort("price"); err != nil {
		return err
	}
	eng.SetPaging(true, 10)
	eng.SetPage(2)
	fmt.Fprintf(w, "sort:        price %s, page %d/%d (%d rows)\n",
		eng.SortDirection("price"), eng.Page(), eng.PageCount(), len(eng.Display()))

	if sum, err := eng.Summary("quantity"); err == nil && sum.Ok {
		fmt.Fprintf(w, "qty total:   %.0f\n", sum.Value)
	}

	display := eng.Display()
	if len(display) == 0 {
		fmt.Fprintln(w, "edit:        skipped, nothing on page")
		return nil
	}
	row := display[0]
	before := row.Quantity
	if _, err := eng.BeginEdit(row, "quantity"); err != nil {
		return err
	}
	if err := eng.SetPending(before + 1); err != nil {
		return err
	}
	out, err := eng.CommitEdit()
	if err != nil {
		return err
	}
	if !out.Valid() {
		return fmt.Errorf("edit rejected: %s", strings.Join(out.Errors, "; "))
	}
	fmt.Fprintf(w, "edit:        %q qty %d -> %d (%s)\n", row.Name, before, row.Quantity, eng.History().UndoDescription())

	if _, err := eng.Undo(); err != nil {
		return err
	}
	if row.Quantity != before {
		return fmt.Errorf("undo left quantity at %d, want %d", row.Quantity, before)
	}
	fmt.Fprintf(w, "undo:        qty back to %d, dirty=%t\n", row.Quantity, svc.Dirty())
	return nil
}
