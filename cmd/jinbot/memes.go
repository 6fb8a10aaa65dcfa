package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jinbot/jinbot/pkg/likes"
	"github.com/jinbot/jinbot/pkg/meme"
)

// memesCmd represents the memes command
var memesCmd = &cobra.Command{
	Use:   "memes",
	Short: "Inspect the meme library",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'memes' requires a subcommand (list)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var memesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List memes and their reactions",
	Long: `List the memes in the meme directory with the reactions recorded for
each, read from the configured store.

Example:
  jinbot memes list`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := listMemes(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list memes: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(memesCmd)
	memesCmd.AddCommand(memesListCmd)
}

func listMemes() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cfg, log.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	library, err := meme.NewLibrary(cfg.MemeDir, log.Logger)
	if err != nil {
		return err
	}
	tracker := likes.NewTracker(st, log.Logger)
	if err := tracker.Load(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MEME\tREACTIONS")
	for _, m := range library.List() {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", m.Name(), likes.Format(tracker.Get(m.Name())))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d meme(s)\n", library.Len())
	return nil
}
