package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"durak/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

type verifyReceiptRequest struct {
	Token string `json:"token"`
}

// VerifyReceiptResponse is returned for a valid receipt.
type VerifyReceiptResponse struct {
	MatchID  string `json:"match_id"`
	IssuedAt int64  `json:"issued_at"`
	Loser    string `json:"loser"`
	Draw     bool   `json:"draw"`
	Rounds   int    `json:"rounds"`
	Moves    int    `json:"moves"`
	Digest   string `json:"digest"`
}

func rpcVerifyReceipt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return verifyReceipt(logger, receiptService, payload)
}

func verifyReceipt(logger runtime.Logger, receipts *app.ReceiptService, payload string) (string, error) {
	var req verifyReceiptRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Token == "" {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	receipt, err := receipts.Verify(req.Token)
	if errors.Is(err, app.ErrReceiptDisabled) {
		logger.Error("VerifyReceipt: %v", err)
		return "", runtime.NewError("Receipts are not configured", 13) // INTERNAL
	}
	if err != nil {
		logger.Warn("VerifyReceipt: Rejected receipt: %v", err)
		return "", runtime.NewError("Invalid receipt", 3)
	}

	resp := VerifyReceiptResponse{
		MatchID:  receipt.MatchID,
		IssuedAt: receipt.IssuedAt.Unix(),
		Loser:    receipt.Loser,
		Draw:     receipt.Draw,
		Rounds:   receipt.Rounds,
		Moves:    receipt.Moves,
		Digest:   receipt.Digest,
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return "", runtime.NewError("Failed to encode response", 13)
	}
	return string(b), nil
}
