package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marking-system/backend/internal/api"
	"github.com/marking-system/backend/internal/storage"
)

const notAssigned = "still not assigned"

func registerCmd(a *app) *cobra.Command {
	var roll, name, class string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a student in a class",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.service.Register(roll, name, class)
			if errors.Is(err, storage.ErrAlreadyExists) {
				fmt.Fprintln(cmd.OutOrStdout(), "Student is already registered with this roll number in the same class.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Student %s registered successfully.\n", name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&roll, "roll", "r", "", "Roll number (required)")
	cmd.Flags().StringVarP(&name, "name", "n", "", "Student name")
	cmd.Flags().StringVarP(&class, "class", "c", "", "Class (required)")
	cmd.MarkFlagRequired("roll")
	cmd.MarkFlagRequired("class")
	return cmd
}

func uploadCmd(a *app) *cobra.Command {
	var roll, class, file, compare string

	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload an assignment and check it for plagiarism",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			report, err := a.service.Upload(roll, class, file, compare)
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintln(out, "Student does not exist. Please upload the assignment of an existing student.")
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Plagiarism results:")
			for _, r := range report.Results {
				fmt.Fprintf(out, "Plagiarism with %s: %.2f%%\n", r.ID, r.Percentage)
			}
			fmt.Fprintf(out, "Plagiarism percentage updated for roll number %s: %.2f%%.\n", report.RollNumber, report.Highest)
			fmt.Fprintf(out, "Marks for roll number %s have been auto-assigned: %s\n", report.RollNumber, report.Marks)
			return nil
		},
	}

	cmd.Flags().StringVarP(&roll, "roll", "r", "", "Roll number (required)")
	cmd.Flags().StringVarP(&class, "class", "c", "", "Class (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the assignment (required)")
	cmd.Flags().StringVarP(&compare, "compare", "d", "", "Folder of documents to compare with (required)")
	cmd.MarkFlagRequired("roll")
	cmd.MarkFlagRequired("class")
	cmd.MarkFlagRequired("file")
	cmd.MarkFlagRequired("compare")
	return cmd
}

func marksCmd(a *app) *cobra.Command {
	var roll, class, marks string

	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Assign or replace a student's marks",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.service.AssignMarks(roll, class, marks)
			if errors.Is(err, storage.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Student does not exist. Please assign marks for an existing student.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marks for roll number %s have been updated successfully.\n", roll)
			return nil
		},
	}

	cmd.Flags().StringVarP(&roll, "roll", "r", "", "Roll number (required)")
	cmd.Flags().StringVarP(&class, "class", "c", "", "Class (required)")
	cmd.Flags().StringVarP(&marks, "marks", "m", "", "Marks to assign, replacing existing marks (required)")
	cmd.MarkFlagRequired("roll")
	cmd.MarkFlagRequired("class")
	cmd.MarkFlagRequired("marks")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	var roll, class string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a student's record",
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, found, err := a.service.Lookup(roll, class)
			if err != nil {
				return err
			}
			if !found {
				fmt.Fprintln(cmd.OutOrStdout(), "Student not found.")
				return nil
			}
			printRecord(cmd.OutOrStdout(), rec)
			return nil
		},
	}

	cmd.Flags().StringVarP(&roll, "roll", "r", "", "Roll number (required)")
	cmd.Flags().StringVarP(&class, "class", "c", "", "Class (required)")
	cmd.MarkFlagRequired("roll")
	cmd.MarkFlagRequired("class")
	return cmd
}

func listCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every registered student",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.service.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No students registered.")
				return nil
			}
			for i, rec := range records {
				if i > 0 {
					fmt.Fprintln(out)
				}
				printRecord(out, rec)
			}
			return nil
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the marking system over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(a.service, a.cfg.Store.AssignmentsDir, a.logger)
			return server.Run(ctx, a.cfg.API.Addr, a.cfg.API.ReadTimeout, a.cfg.API.ShutdownTimeout)
		},
	}
}

func printRecord(out io.Writer, rec storage.StudentRecord) {
	orDefault := func(v string) string {
		if v == "" {
			return notAssigned
		}
		return v
	}
	plagiarism := ""
	if rec.PlagiarismScore != nil {
		plagiarism = fmt.Sprintf("%.2f", *rec.PlagiarismScore)
	}

	fmt.Fprintln(out, "Student Details:")
	fmt.Fprintln(out, "Roll Number:", rec.RollNumber)
	fmt.Fprintln(out, "Name:", orDefault(rec.Name))
	fmt.Fprintln(out, "Class:", orDefault(rec.ClassID))
	fmt.Fprintln(out, "Assignment File:", orDefault(rec.AssignmentPath))
	fmt.Fprintln(out, "Marks:", orDefault(rec.Marks))
	fmt.Fprintln(out, "Plagiarism:", orDefault(plagiarism))
}
