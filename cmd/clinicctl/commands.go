package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-local-store/internal/records"
	"github.com/hackgods/clinic-local-store/internal/seed"
)

const dateFormat = "02/01/2006 15:04"

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the record schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", records.SchemaVersion)
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record and load the reference data",
		Long: `reset wipes doctors, patients and appointments, restarts their ids and
loads the reference dataset. It cannot be undone; pass --yes to confirm.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset deletes all records, pass --yes to confirm")
			}
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := seed.ResetToReferenceData(cmd.Context(), a.Repo); err != nil {
				return err
			}
			return printCounts(cmd, a.Repo)
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}

func newSeedIfEmptyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-if-empty",
		Short: "Load the reference data into an empty store",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			seeded, err := seed.SeedIfEmpty(cmd.Context(), a.Repo)
			if err != nil {
				return err
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "store already has records, nothing loaded")
			}
			return printCounts(cmd, a.Repo)
		},
	}
}

func newFakeCmd() *cobra.Command {
	var (
		counts  seed.FakeCounts
		seedArg uint64
	)
	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Append generated demo records",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := seed.Fake(cmd.Context(), a.Repo, counts, seedArg); err != nil {
				return err
			}
			return printCounts(cmd, a.Repo)
		},
	}
	cmd.Flags().IntVar(&counts.Doctors, "doctors", 5, "doctors to generate")
	cmd.Flags().IntVar(&counts.Patients, "patients", 20, "patients to generate")
	cmd.Flags().IntVar(&counts.Appointments, "appointments", 50, "appointments to generate")
	cmd.Flags().Uint64Var(&seedArg, "seed", 0, "random seed, 0 for a random one")
	return cmd
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [term]",
		Short: "List appointments matching a patient, doctor or reason",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			term := ""
			if len(args) == 1 {
				term = args[0]
			}

			view, err := a.Clinic.Load(cmd.Context())
			if err != nil {
				return err
			}
			rows := view.Search(term)
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No appointments found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPATIENT\tDOCTOR\tDATE\tREASON\tSTATUS")
			for _, r := range rows {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.Appointment.ID,
					r.Appointment.PatientName,
					r.Doctor.NameOr("Desconocido"),
					r.Appointment.Date.Local().Format(dateFormat),
					r.Appointment.Reason,
					r.Appointment.Status)
			}
			return w.Flush()
		},
	}
}

func printCounts(cmd *cobra.Command, repo records.Repository) error {
	c, err := repo.Counts(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "doctors=%d patients=%d appointments=%d\n", c.Doctors, c.Patients, c.Appointments)
	return nil
}
