package main

import (
	"strings"
	"testing"

	"onboardbot/internal/flow"
)

func TestRenderUsersTable(t *testing.T) {
	users := []*flow.UserRecord{
		{
			Username:  "avpod",
			FirstName: "Andrei",
			LastName:  "P",
			State:     flow.StateAwaitingClassification,
			Documents: []flow.DocumentRecord{
				{ID: "d1", Class: flow.ClassPassport},
				{ID: "d2", Class: flow.ClassUnclassified},
			},
		},
		{Username: "newcomer", State: flow.StateNew},
	}

	out := renderUsersTable(users)
	for _, want := range []string{"avpod", "Andrei P", "Awaiting Classification", "newcomer", "New"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 4 {
		t.Fatalf("table too short:\n%s", out)
	}
}

func TestStateLabel(t *testing.T) {
	if got := stateLabel(flow.StateMandatorySatisfied); got != "Mandatory Satisfied" {
		t.Fatalf("stateLabel = %q", got)
	}
}
