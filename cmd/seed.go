package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"claudehub/internal/records"
	"claudehub/pkg/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var seedOpts struct {
	user    string
	migrate bool
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample dashboard rows for a user",
	Long: `Inserts the sample sales stats, transactions and projects for one user
into the records database. Requires RECORDS_SERVICE_KEY.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.user, "user", "", "id of the user that owns the rows")
	seedCmd.Flags().BoolVar(&seedOpts.migrate, "migrate", false, "create missing records tables first")
	_ = seedCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := checkSeedConfig(cfg); err != nil {
		return err
	}

	client, closeRecords, err := openRecords(ctx, seedOpts.migrate, records.Privileged())
	if err != nil {
		return err
	}
	defer closeRecords()

	n, err := seedUser(ctx, client, seedOpts.user, time.Now())
	if err != nil {
		return err
	}
	logrus.WithField("user_id", seedOpts.user).Infof("Seeded %d rows", n)
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows for %s\n", n, seedOpts.user)
	return nil
}

// checkSeedConfig refuses to seed without a real records backend. The
// service key is an operator gate: the store it unlocks uses the same
// RECORDS_URL pool with owner filters lifted.
func checkSeedConfig(c *config.Config) error {
	if c.RecordsDemo() {
		return errors.New("records backend is not configured")
	}
	if config.IsUnset(c.RecordsServiceKey) {
		return errors.New("RECORDS_SERVICE_KEY is required to seed records")
	}
	return nil
}

// seedUser writes the sample rows owned by userID and returns how many were
// inserted. Sample ids are cleared so the store assigns fresh ones.
func seedUser(ctx context.Context, client records.Client, userID string, now time.Time) (int, error) {
	inserted := 0
	insert := func(table records.Table, row any) error {
		if err := client.InsertRow(ctx, table, row); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
		inserted++
		return nil
	}

	stats := records.SampleStats(userID, now)
	stats.ID = ""
	if err := insert(records.TableSalesStats, &stats); err != nil {
		return inserted, err
	}
	for _, tx := range records.SampleTransactions(userID, now) {
		tx.ID = ""
		if err := insert(records.TableTransactions, &tx); err != nil {
			return inserted, err
		}
	}
	for _, p := range records.SampleProjects(userID, now) {
		p.ID = ""
		if err := insert(records.TableProjects, &p); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}
