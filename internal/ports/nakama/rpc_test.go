package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"durak/internal/app"
	"durak/internal/domain"

	"github.com/heroiclabs/nakama-common/api"
)

type fakeMatchFinder struct {
	matches   []*api.Match
	listErr   error
	created   int
	lastQuery string
	lastMax   int
}

func (f *fakeMatchFinder) MatchList(ctx context.Context, limit int, authoritative bool, label string, minSize, maxSize *int, query string) ([]*api.Match, error) {
	f.lastQuery = query
	f.lastMax = *maxSize
	return f.matches, f.listErr
}

func (f *fakeMatchFinder) MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error) {
	if module != MatchNameDurak {
		return "", fmt.Errorf("unexpected module %s", module)
	}
	f.created++
	return "new-match", nil
}

func TestQuickMatch(t *testing.T) {
	tests := []struct {
		name    string
		finder  *fakeMatchFinder
		want    QuickMatchResponse
		wantErr bool
	}{
		{
			name:   "JoinsOpenLobby",
			finder: &fakeMatchFinder{matches: []*api.Match{{MatchId: "open-match"}}},
			want:   QuickMatchResponse{MatchID: "open-match"},
		},
		{
			name:   "CreatesWhenNoneOpen",
			finder: &fakeMatchFinder{},
			want:   QuickMatchResponse{MatchID: "new-match", IsNew: true},
		},
		{
			name:    "ListError",
			finder:  &fakeMatchFinder{listErr: errors.New("boom")},
			wantErr: true,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out, err := quickMatch(context.Background(), noopLogger{}, test.finder, 4)
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("quickMatch error: %v", err)
			}
			var got QuickMatchResponse
			if err := json.Unmarshal([]byte(out), &got); err != nil {
				t.Fatalf("response is not JSON: %v", err)
			}
			if got != test.want {
				t.Fatalf("quickMatch() = %+v, want %+v", got, test.want)
			}
			if test.finder.lastQuery != "+label.game:durak +label.state:lobby +label.open:>=1" || test.finder.lastMax != 3 {
				t.Fatalf("query = %q max = %d", test.finder.lastQuery, test.finder.lastMax)
			}
		})
	}
}

func TestVerifyReceipt(t *testing.T) {
	receipts := app.NewReceiptService("rpc-secret", "durak-test")
	game, err := domain.NewGame([]string{"solo"})
	if err != nil {
		t.Fatalf("NewGame error: %v", err)
	}
	token, err := receipts.Issue("match-7", game)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	out, err := verifyReceipt(noopLogger{}, receipts, fmt.Sprintf(`{"token":%q}`, token))
	if err != nil {
		t.Fatalf("verifyReceipt error: %v", err)
	}
	var resp VerifyReceiptResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if resp.MatchID != "match-7" || resp.Loser != "solo" || resp.Digest != app.HistoryDigest(game.History()) {
		t.Fatalf("response = %+v", resp)
	}

	tests := []struct {
		name     string
		receipts *app.ReceiptService
		payload  string
	}{
		{name: "InvalidJSON", receipts: receipts, payload: "{"},
		{name: "MissingToken", receipts: receipts, payload: `{}`},
		{name: "WrongSecret", receipts: app.NewReceiptService("other", "durak-test"), payload: fmt.Sprintf(`{"token":%q}`, token)},
		{name: "Disabled", receipts: nil, payload: fmt.Sprintf(`{"token":%q}`, token)},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := verifyReceipt(noopLogger{}, test.receipts, test.payload); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
