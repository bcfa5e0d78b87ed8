package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"onboardbot/internal/flow"
	"onboardbot/internal/store"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List users and their intake progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			users, err := st.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("list users: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderUsersTable(users))
			return nil
		},
	}
}

var stateTitler = cases.Title(language.English)

func renderUsersTable(users []*flow.UserRecord) string {
	rows := make([][]string, 0, len(users))
	for _, user := range users {
		rows = append(rows, []string{
			user.Username,
			user.DisplayName(),
			stateLabel(user.State),
			strconv.Itoa(len(user.Documents)),
			strconv.Itoa(len(user.PendingDocuments())),
		})
	}
	return renderTable(
		[]string{"Username", "Name", "State", "Documents", "Pending"},
		rows,
		3, 4,
	)
}

func stateLabel(state flow.FlowState) string {
	return stateTitler.String(strings.ReplaceAll(string(state), "_", " "))
}
