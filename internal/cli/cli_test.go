package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/service"
)

func TestRootCmdRegistersSubcommands(t *testing.T) {
	root := RootCmd()
	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "token", "requests"}, names)

	requests, _, err := root.Find([]string{"requests", "transition"})
	require.NoError(t, err)
	assert.Equal(t, "transition", requests.Name())

	history, _, err := root.Find([]string{"requests", "history"})
	require.NoError(t, err)
	assert.Equal(t, "history", history.Name())
}

func TestPrintRequests(t *testing.T) {
	color.NoColor = true
	processed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	records := []models.LetterRequest{
		{ID: "req-2", EmployeeID: "E100", EmployeeName: "Asha", LetterType: models.LetterTypeVisaLetter, Status: models.LetterRequestStatusApproved, RequestDate: processed.Add(-time.Hour), ProcessedDate: &processed},
		{ID: "req-1", EmployeeID: "E200", EmployeeName: "Ravi", LetterType: models.LetterTypeNOC, Status: models.LetterRequestStatusPending, RequestDate: processed.Add(-48 * time.Hour)},
	}

	var buf bytes.Buffer
	printRequests(&buf, records)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "VISA Letter")
	assert.Contains(t, lines[2], "approved")
	assert.Contains(t, lines[2], "2026-03-02 10:00:00")
	assert.Contains(t, lines[3], "pending")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[3]), "-"))

	buf.Reset()
	printRequests(&buf, nil)
	assert.Equal(t, "No letter requests found.\n", buf.String())
}

func TestMintToken(t *testing.T) {
	tokens := service.NewTokenService(service.TokenConfig{Secret: "cli-secret", Issuer: "hr-letter-portal"})
	cmd := &cobra.Command{}
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	require.NoError(t, mintToken(cmd, tokens, "E100", "Asha", models.RoleEmployee, time.Hour))
	claims, err := tokens.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "E100", claims.ActorID())
	assert.Contains(t, errOut.String(), "expires")

	assert.Error(t, mintToken(cmd, tokens, "E100", "Asha", models.UserRole("OWNER"), time.Hour))
}

func TestPrintHistory(t *testing.T) {
	actor := "admin-1"
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	logs := []models.AuditLog{
		{Action: models.AuditActionLetterRequestTransition, ActorID: &actor, OldValues: []byte(`{"status":"pending"}`), NewValues: []byte(`{"status":"approved"}`), CreatedAt: at},
		{Action: models.AuditActionLetterRequestCreate, NewValues: []byte(`{"status":"pending"}`), CreatedAt: at.Add(-time.Hour)},
	}

	var buf bytes.Buffer
	printHistory(&buf, logs)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "admin-1")
	assert.Contains(t, lines[1], "pending -> approved")
	assert.Contains(t, lines[2], "LETTER_REQUEST_CREATE")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(lines[2]), "pending"))

	buf.Reset()
	printHistory(&buf, nil)
	assert.Equal(t, "No audit entries found.\n", buf.String())
}
