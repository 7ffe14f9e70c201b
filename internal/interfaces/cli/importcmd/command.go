package importcmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/storedesk/storedesk/internal/application/importer"
	"github.com/storedesk/storedesk/internal/application/importer/dto"
	"github.com/storedesk/storedesk/internal/infrastructure/repository"
	"github.com/storedesk/storedesk/internal/interfaces/cli/common"
)

var (
	env        string
	snapshot   string
	clearAfter bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import the station's local snapshot into the shared store",
		Long: `Copy the datasets a station kept locally (products, categories, members,
employees, sales, coupons, suppliers) into the shared store.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&snapshot, "snapshot", "", "Snapshot file (default: <station.data_dir>/<station.snapshot_file>)")

	run := &cobra.Command{
		Use:   "run",
		Short: "Import every dataset",
		RunE:  runImport,
	}
	run.Flags().BoolVar(&clearAfter, "clear", false, "Remove imported datasets from the snapshot when every dataset succeeded")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "List datasets present in the snapshot",
			RunE:  runCheck,
		},
		run,
		&cobra.Command{
			Use:   "clear",
			Short: "Remove imported datasets from the snapshot",
			RunE:  runClear,
		},
	)

	return cmd
}

func newImporter(e *common.Env) *importer.Importer {
	path := snapshot
	if path == "" {
		path = filepath.Join(e.Config.Station.DataDir, e.Config.Station.SnapshotFile)
	}
	return importer.NewImporter(
		path,
		repository.NewInventoryRepository(e.DB),
		repository.NewAppSettingRepository(e.DB),
		e.Config.Auth.DefaultRole,
		e.Log.With("component", "importer"),
	)
}

func runCheck(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	imp := newImporter(e)
	present, err := imp.Check(cmd.Context())
	if err != nil {
		return err
	}
	if len(present) == 0 {
		fmt.Printf("No datasets found in %s\n", imp.Path())
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tKEY\tRECORDS")
	for _, p := range present {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.Dataset, p.Key, p.Count)
	}
	return tw.Flush()
}

func runImport(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	imp := newImporter(e)
	summary, err := imp.ImportAll(cmd.Context())
	if err != nil {
		return err
	}
	printSummary(summary)

	if !summary.Success {
		return fmt.Errorf("import incomplete: %s", summary.Summary)
	}
	if clearAfter {
		return imp.ClearLocal(cmd.Context())
	}
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	e, err := common.Init(env)
	if err != nil {
		return err
	}
	defer e.Close()

	return newImporter(e).ClearLocal(cmd.Context())
}

func printSummary(summary *dto.ImportSummary) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tOK\tMIGRATED\tTOTAL\tMESSAGE")
	for _, r := range summary.Results {
		fmt.Fprintf(tw, "%s\t%t\t%d\t%d\t%s\n", r.Dataset, r.Success, r.Migrated, r.Total, r.Message)
	}
	_ = tw.Flush()

	for _, r := range summary.Results {
		for _, se := range r.Errors {
			fmt.Printf("  %s %s: %s\n", r.Dataset, se.ReceiptNumber, se.Error)
		}
	}
	fmt.Printf("\n%s\n", summary.Summary)
}
