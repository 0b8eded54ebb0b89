package cmd

import (
	"errors"
	"fmt"

	"region-sync/core/record"
	"region-sync/core/region"
	"region-sync/feature/sales"

	"github.com/spf13/cobra"
)

// salesCmd shows one sale as held by every region.
var salesCmd = &cobra.Command{
	Use:   "sales [id]",
	Short: "Show a sale in every region",
	Long:  `Looks a sale up in every region and reports whether the copies agree.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSalesDetail,
}

func init() {
	RootCmd.AddCommand(salesCmd)
}

func runSalesDetail(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := sales.ParseID(args[0])
	if err != nil {
		return err
	}

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	replicas := region.Open(cfg.Regions, l)
	defer region.Close(replicas)

	var (
		versions []record.Record
		missing  int
	)

	fmt.Println("\n--- Sale Detail View ---")
	fmt.Printf("ID:             %s\n", id)
	fmt.Println("------------------------")
	for _, r := range replicas {
		rec, err := r.Store.FindByID(ctx, id)
		switch {
		case errors.Is(err, region.ErrRecordNotFound):
			missing++
			fmt.Printf("%-15s absent\n", r.Label+":")
		case err != nil:
			fmt.Printf("%-15s \033[31munreachable\033[0m (%v)\n", r.Label+":", err)
		default:
			versions = append(versions, rec)
			state := "active"
			if rec.Deleted {
				state = "deleted"
			}
			fmt.Printf("%-15s %s  amount=%s  product=%s  updated_at=%s\n",
				r.Label+":", state, rec.Amount.String(), rec.Product, rec.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
		}
	}

	status, color := consistency(versions, missing)
	fmt.Println("------------------------")
	fmt.Printf("Status:         %s%s\033[0m\n", color, status)
	fmt.Println("------------------------")
	return nil
}

// consistency classifies the copies of one sale.
func consistency(versions []record.Record, missing int) (string, string) {
	if len(versions) == 0 {
		return "NOT FOUND", "\033[31m"
	}
	for _, v := range versions[1:] {
		if !v.UpdatedAt.Equal(versions[0].UpdatedAt) {
			return "DIVERGENT", "\033[33m"
		}
	}
	if missing > 0 {
		return "DIVERGENT", "\033[33m"
	}
	return "CONSISTENT", "\033[32m"
}
