package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/hr-letter-api/internal/dto"
	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/repository"
	"github.com/noah-isme/hr-letter-api/internal/service"
)

// RequestsCmd groups letter request commands.
func RequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "List and review letter requests",
	}
	cmd.AddCommand(requestsListCmd())
	cmd.AddCommand(requestsTransitionCmd())
	cmd.AddCommand(requestsHistoryCmd())
	return cmd
}

func requestsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List letter requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			status, _ := cmd.Flags().GetString("status")
			letterType, _ := cmd.Flags().GetString("type")
			employee, _ := cmd.Flags().GetString("employee")
			limit, _ := cmd.Flags().GetInt("limit")

			svc := service.NewLetterRequestService(repository.NewLetterRequestRepository(rt.db), nil, nil, rt.logger)
			var records []models.LetterRequest
			if employee != "" {
				records, err = svc.ListByEmployee(cmd.Context(), employee, cliActor())
			} else {
				records, err = svc.ListAll(cmd.Context(), dto.LetterRequestQuery{
					Status:     models.LetterRequestStatus(status),
					LetterType: models.LetterType(letterType),
					Limit:      limit,
				})
			}
			if err != nil {
				return fmt.Errorf("failed to list letter requests: %w", err)
			}
			printRequests(cmd.OutOrStdout(), records)
			return nil
		},
	}
	cmd.Flags().String("status", "", "Filter by status (pending, approved, rejected)")
	cmd.Flags().String("type", "", "Filter by letter type")
	cmd.Flags().String("employee", "", "Only this employee's requests")
	cmd.Flags().Int("limit", 50, "Maximum rows")
	return cmd
}

func requestsTransitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transition [request-id] [approved|rejected]",
		Short: "Approve or reject a pending request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			notes, _ := cmd.Flags().GetString("notes")
			svc := service.NewLetterRequestService(
				repository.NewLetterRequestRepository(rt.db),
				repository.NewAuditRepository(rt.db),
				nil,
				rt.logger,
				service.WithRetransition(rt.cfg.Letters.AllowRetransition),
			)
			record, err := svc.Transition(cmd.Context(), args[0], dto.TransitionLetterRequest{
				Status:     models.LetterRequestStatus(args[1]),
				AdminNotes: notes,
			}, cliActor())
			if err != nil {
				return fmt.Errorf("failed to transition letter request: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", record.ID, statusLabel(record.Status))
			return nil
		},
	}
	cmd.Flags().String("notes", "", "Admin notes recorded with the decision")
	return cmd
}

func requestsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [request-id]",
		Short: "Show the audit trail of a letter request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()

			logs, err := repository.NewAuditRepository(rt.db).ListByResource(cmd.Context(), models.AuditResourceLetterRequest, args[0])
			if err != nil {
				return fmt.Errorf("failed to load audit trail: %w", err)
			}
			printHistory(cmd.OutOrStdout(), logs)
			return nil
		},
	}
}

func cliActor() models.Actor {
	return models.Actor{ID: "letterctl", Name: "letterctl", Role: models.RoleAdmin, UserAgent: "letterctl"}
}

func printRequests(out io.Writer, records []models.LetterRequest) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No letter requests found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEMPLOYEE\tNAME\tTYPE\tSTATUS\tREQUESTED\tPROCESSED")
	fmt.Fprintln(w, "--\t--------\t----\t----\t------\t---------\t---------")
	for _, rec := range records {
		processed := "-"
		if rec.ProcessedDate != nil {
			processed = rec.ProcessedDate.Format(time.DateTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			rec.EmployeeID,
			rec.EmployeeName,
			rec.LetterType.Label(),
			statusLabel(rec.Status),
			rec.RequestDate.Format(time.DateTime),
			processed,
		)
	}
	w.Flush()
}

func printHistory(out io.Writer, logs []models.AuditLog) {
	if len(logs) == 0 {
		fmt.Fprintln(out, "No audit entries found.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTOR\tACTION\tCHANGE")
	for _, entry := range logs {
		actor := "-"
		if entry.ActorID != nil {
			actor = *entry.ActorID
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			entry.CreatedAt.Format(time.DateTime),
			actor,
			entry.Action,
			auditChange(entry),
		)
	}
	w.Flush()
}

// auditChange summarises the status movement recorded in an entry.
func auditChange(entry models.AuditLog) string {
	before := auditStatus(entry.OldValues)
	after := auditStatus(entry.NewValues)
	switch {
	case before == "" && after == "":
		return "-"
	case before == "":
		return after
	default:
		return before + " -> " + after
	}
}

func auditStatus(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var snapshot struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return ""
	}
	return snapshot.Status
}

func statusLabel(status models.LetterRequestStatus) string {
	switch status {
	case models.LetterRequestStatusApproved:
		return color.New(color.FgGreen).Sprint(string(status))
	case models.LetterRequestStatusRejected:
		return color.New(color.FgRed).Sprint(string(status))
	default:
		return color.New(color.FgYellow).Sprint(string(status))
	}
}
