package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hackgods/clinic-scheduling/internal/appointment"
	"github.com/hackgods/clinic-scheduling/internal/prompt"
	"github.com/hackgods/clinic-scheduling/internal/schedule"
)

type clinicService interface {
	FindFreeSlots(ctx context.Context, expression string, now time.Time) (*appointment.Availability, error)
	BookAppointment(ctx context.Context, req appointment.BookRequest) (*appointment.Appointment, error)
	BookInteractive(ctx context.Context, patientID uuid.UUID, expression string, prompter schedule.Prompter) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.AppointmentDetail, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]appointment.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID) error
	RegisterPatient(ctx context.Context, name string, email *string) (*appointment.Patient, error)
}

type session struct {
	svc     clinicService
	migrate func(ctx context.Context) error
	close   func()
}

type opener func(ctx context.Context) (*session, error)

func newRootCmd(open opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "clinic",
		Short:        "Clinic appointment scheduling shell",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(migrateCmd(open))
	rootCmd.AddCommand(slotsCmd(open))
	rootCmd.AddCommand(bookCmd(open))
	rootCmd.AddCommand(showCmd(open))
	rootCmd.AddCommand(listCmd(open))
	rootCmd.AddCommand(cancelCmd(open))
	rootCmd.AddCommand(patientCmd(open))

	return rootCmd
}

// withSession opens a session for the duration of fn.
func withSession(cmd *cobra.Command, open opener, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := open(ctx)
	if err != nil {
		return err
	}
	if s.close != nil {
		defer s.close()
	}
	return fn(ctx, s)
}

func migrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the clinic tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				if err := s.migrate(ctx); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
				return nil
			})
		},
	}
}

func slotsCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:     "slots <when>",
		Short:   "List free slots, e.g. \"slots next week\" or \"slots 13/12/2018\"",
		Args:    cobra.MinimumNArgs(1),
		Example: "  clinic slots tomorrow\n  clinic slots in 3 weeks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				avail, err := s.svc.FindFreeSlots(ctx, strings.Join(args, " "), time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), avail.Text)
				return nil
			})
		},
	}
}

func bookCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book <when>",
		Short: "Book an appointment, choosing from the free slots in a period",
		Long: "Book an appointment for a patient. Without --slot the free slots for <when> are listed\n" +
			"and the slot, tags and notes are asked for interactively. Answer \"" + prompt.CancelWord + "\" to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, _ := cmd.Flags().GetString("patient")
			slot, _ := cmd.Flags().GetString("slot")
			tags, _ := cmd.Flags().GetStringSlice("tags")
			details, _ := cmd.Flags().GetString("details")

			patientID, err := uuid.Parse(patient)
			if err != nil {
				return fmt.Errorf("--patient must be a valid UUID")
			}
			if slot == "" && len(args) == 0 {
				return fmt.Errorf("either <when> or --slot is required")
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				var appt *appointment.Appointment
				if slot != "" {
					appt, err = s.svc.BookAppointment(ctx, appointment.BookRequest{
						PatientID: patientID,
						Slot:      slot,
						Details:   details,
						Tags:      tags,
					})
				} else {
					term := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
					appt, err = s.svc.BookInteractive(ctx, patientID, strings.Join(args, " "), term)
				}

				out := cmd.OutOrStdout()
				switch {
				case errors.Is(err, schedule.ErrCancelled):
					fmt.Fprintln(out, "\nBooking cancelled.")
					return nil
				case errors.Is(err, schedule.ErrNoFreeSlots):
					fmt.Fprintln(out, schedule.NoSlotsMessage)
					return nil
				case err != nil:
					return err
				}

				fmt.Fprintf(out, "Booked %s (%s)\n", appt.Interval(), appt.ID)
				return nil
			})
		},
	}
	cmd.Flags().String("patient", "", "Patient ID")
	cmd.Flags().String("slot", "", "Exact slot as \"DD/MM/YYYY hh:mm - hh:mm\", skips the questions")
	cmd.Flags().StringSlice("tags", nil, "Tags for a --slot booking")
	cmd.Flags().String("details", "", "Notes for a --slot booking")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func showCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <appointment-id>",
		Short: "Show one appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("appointment id must be a valid UUID")
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				d, err := s.svc.GetAppointment(ctx, id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Appointment %s\n", d.ID)
				fmt.Fprintf(out, "  Slot:    %s\n", d.Interval())
				if d.Patient != nil {
					fmt.Fprintf(out, "  Patient: %s (%s)\n", d.Patient.Name, d.Patient.ID)
				} else {
					fmt.Fprintf(out, "  Patient: %s\n", d.PatientID)
				}
				if len(d.Tags) > 0 {
					fmt.Fprintf(out, "  Tags:    %s\n", strings.Join(d.Tags, ", "))
				}
				if d.Details != "" {
					fmt.Fprintf(out, "  Notes:   %s\n", d.Details)
				}
				return nil
			})
		},
	}
}

func listCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a patient's appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, _ := cmd.Flags().GetString("patient")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			patientID, err := uuid.Parse(patient)
			if err != nil {
				return fmt.Errorf("--patient must be a valid UUID")
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				appts, err := s.svc.ListAppointmentsByPatient(ctx, patientID, limit, offset)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(appts) == 0 {
					fmt.Fprintln(out, "No appointments.")
					return nil
				}
				for _, a := range appts {
					fmt.Fprintf(out, "%s  %s\n", a.ID, a.Interval())
				}
				return nil
			})
		},
	}
	cmd.Flags().String("patient", "", "Patient ID")
	cmd.Flags().Int("limit", 20, "Maximum number of appointments")
	cmd.Flags().Int("offset", 0, "Number of appointments to skip")
	_ = cmd.MarkFlagRequired("patient")
	return cmd
}

func cancelCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel an appointment and free its slot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("appointment id must be a valid UUID")
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				if err := s.svc.CancelAppointment(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", id)
				return nil
			})
		},
	}
}

func patientCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage patients",
	}

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")

			var emailPtr *string
			if email != "" {
				emailPtr = &email
			}

			return withSession(cmd, open, func(ctx context.Context, s *session) error {
				p, err := s.svc.RegisterPatient(ctx, name, emailPtr)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	}
	addCmd.Flags().String("name", "", "Patient name")
	addCmd.Flags().String("email", "", "Patient email")
	_ = addCmd.MarkFlagRequired("name")

	cmd.AddCommand(addCmd)
	return cmd
}
