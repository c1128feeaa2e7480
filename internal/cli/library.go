package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/soyeahso/arena/internal/scholar"
	"github.com/soyeahso/arena/internal/store"
	"github.com/spf13/cobra"
)

func newLibraryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "library",
		Short: "Browse papers the assistant has surfaced",
	}

	cmd.AddCommand(newLibrarySearchCmd())
	cmd.AddCommand(newLibraryRecentCmd())
	return cmd
}

func openLibrary() (*store.Library, *store.DB, error) {
	db, err := store.Open(filepath.Join(paths.Data, "arena.db"), log)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return store.NewLibrary(db), db, nil
}

func newLibrarySearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search over saved papers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, db, err := openLibrary()
			if err != nil {
				return err
			}
			defer db.Close()

			papers, err := lib.Search(strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			if len(papers) == 0 {
				fmt.Println("No saved papers match.")
				return nil
			}
			printPapers(papers)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

func newLibraryRecentCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the most recently saved papers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, db, err := openLibrary()
			if err != nil {
				return err
			}
			defer db.Close()

			papers, err := lib.Recent(limit)
			if err != nil {
				return err
			}
			if len(papers) == 0 {
				fmt.Println("The library is empty.")
				return nil
			}
			printPapers(papers)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum results")
	return cmd
}

func printPapers(papers []scholar.Paper) {
	for _, p := range papers {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf(" (%d)", p.Year)
		}
		fmt.Printf("%s%s\n", p.Title, year)
		if len(p.Authors) > 0 {
			fmt.Printf("  %s\n", strings.Join(p.Authors, ", "))
		}
		switch {
		case p.ArxivID != "":
			fmt.Printf("  arXiv:%s\n", p.ArxivID)
		case p.DOI != "":
			fmt.Printf("  doi:%s\n", p.DOI)
		}
		fmt.Println()
	}
}
