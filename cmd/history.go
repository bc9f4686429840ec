package cmd

import (
	"fmt"

	"envsync/internal/repository"

	"github.com/spf13/cobra"
)

var historyN int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent sync history",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := repository.NewHistoryRepository()

		histories, err := repo.GetRecent(historyN)
		if err != nil {
			return err
		}

		if len(histories) == 0 {
			fmt.Println("no history yet")
			return nil
		}

		for _, h := range histories {
			status := "ok"
			if h.Status != "SUCCESS" {
				status = "failed"
			}

			fmt.Printf("%s  %-7s %-10s %s  %s\n",
				h.SyncedAt.Format("2006-01-02 15:04:05"),
				status, h.ItemKind, h.ItemPath, h.Message)
		}

		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyN, "number", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
