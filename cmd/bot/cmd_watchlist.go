package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"MarketPulse/internal/watchlist"
)

func newWatchlistCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watchlist",
		Short: "Show or edit the tracked markets, sectors and symbols",
	}

	open := func() (*watchlist.Manager, error) {
		cfg, err := loadConfig(g)
		if err != nil {
			return nil, err
		}
		return watchlist.NewManager(cfg.Watchlist.Path)
	}

	list := &cobra.Command{
		Use:   "list [MARKET]",
		Short: "List the watchlist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, mk := range m.Snapshot().Markets {
				if len(args) == 1 && mk.Key != args[0] {
					continue
				}
				fmt.Fprintf(out, "%s (%s)\n", mk.Name, mk.Key)
				for _, idx := range mk.Indices {
					fmt.Fprintf(out, "  index  %s %s\n", idx.Symbol, idx.Name)
				}
				for _, s := range mk.Sectors {
					fmt.Fprintf(out, "  %-24s %s\n", s.Name, strings.Join(s.Symbols, " "))
				}
				if n := len(mk.Discovery.Universe); n > 0 {
					fmt.Fprintf(out, "  discovery universe: %d symbols\n", n)
				}
				if len(mk.Discovery.Screeners) > 0 {
					fmt.Fprintf(out, "  discovery screeners: %s\n", strings.Join(mk.Discovery.Screeners, ", "))
				}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add MARKET SECTOR SYMBOL",
		Short: "Add a symbol to a sector",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			if err := m.AddStock(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to %s/%s\n", strings.ToUpper(args[2]), args[0], args[1])
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove MARKET SECTOR SYMBOL",
		Short: "Remove a symbol from a sector",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			if err := m.RemoveStock(args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s from %s/%s\n", strings.ToUpper(args[2]), args[0], args[1])
			return nil
		},
	}

	addSector := &cobra.Command{
		Use:   "add-sector MARKET SECTOR [SYMBOL...]",
		Short: "Add a sector, optionally with symbols",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			if err := m.AddSector(args[0], args[1], args[2:]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added sector %s/%s\n", args[0], args[1])
			return nil
		},
	}

	removeSector := &cobra.Command{
		Use:   "remove-sector MARKET SECTOR",
		Short: "Remove a sector",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			if err := m.RemoveSector(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed sector %s/%s\n", args[0], args[1])
			return nil
		},
	}

	cmd.AddCommand(list, add, remove, addSector, removeSector)
	return cmd
}
