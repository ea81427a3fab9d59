package flow

import (
	"encoding/json"
	"testing"
)

func TestConnectionJSON(t *testing.T) {
	in := Connection{State: AwaitingTarget, Source: "A"}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"state":"awaiting-target","source":"A"}`; string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	var out Connection
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.State != AwaitingTarget || out.Source != "A" {
		t.Errorf("Unmarshal = %+v", out)
	}

	var s State
	if err := s.UnmarshalText([]byte("bogus")); err != nil || s != Idle {
		t.Errorf("UnmarshalText(bogus) = %v, %v", s, err)
	}
}
