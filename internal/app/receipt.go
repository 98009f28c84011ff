package app

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"

	"durak/internal/domain"
)

var (
	ErrGameNotOver     = errors.New("game is not over")
	ErrInvalidReceipt  = errors.New("invalid receipt")
	ErrReceiptDisabled = errors.New("receipt secret not configured")
)

// Receipt is the verified content of a signed game result.
type Receipt struct {
	MatchID  string
	Issuer   string
	IssuedAt time.Time
	Loser    string
	Draw     bool
	Rounds   int
	Moves    int
	Digest   string
}

// ReceiptService signs and verifies game result receipts.
type ReceiptService struct {
	secret string
	issuer string
	now    func() time.Time
}

func NewReceiptService(secret, issuer string) *ReceiptService {
	return &ReceiptService{
		secret: secret,
		issuer: issuer,
		now:    time.Now,
	}
}

// Issue signs the outcome of a finished game. The digest binds the receipt to the full move log.
func (s *ReceiptService) Issue(matchID string, game *domain.Game) (string, error) {
	if s == nil || s.secret == "" {
		return "", ErrReceiptDisabled
	}
	if game == nil {
		return "", ErrNoGame
	}
	if game.Phase() != domain.PhaseGameOver {
		return "", ErrGameNotOver
	}

	history := game.History()
	claims := jwt.MapClaims{
		"iss":    s.issuer,
		"sub":    matchID,
		"iat":    s.now().Unix(),
		"loser":  game.Loser(),
		"draw":   game.IsDraw(),
		"rounds": game.Round() - 1,
		"moves":  countMoves(history),
		"digest": HistoryDigest(history),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify checks the signature and issuer of a receipt and returns its claims.
func (s *ReceiptService) Verify(tokenString string) (Receipt, error) {
	if s == nil || s.secret == "" {
		return Receipt{}, ErrReceiptDisabled
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("%w: %v", ErrInvalidReceipt, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return Receipt{}, ErrInvalidReceipt
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return Receipt{}, fmt.Errorf("%w: issuer mismatch", ErrInvalidReceipt)
	}

	r := Receipt{
		MatchID: stringClaim(claims, "sub"),
		Issuer:  stringClaim(claims, "iss"),
		Loser:   stringClaim(claims, "loser"),
		Digest:  stringClaim(claims, "digest"),
		Rounds:  intClaim(claims, "rounds"),
		Moves:   intClaim(claims, "moves"),
	}
	r.Draw, _ = claims["draw"].(bool)
	r.IssuedAt = time.Unix(int64(intClaim(claims, "iat")), 0)
	return r, nil
}

// HistoryDigest returns the hex SHA-256 of the history, one canonical line per record.
func HistoryDigest(records []domain.Record) string {
	h := sha256.New()
	for _, rec := range records {
		fmt.Fprintf(h, "%d|%s|%s|%s|%s\n", rec.Seq, rec.Actor, rec.Kind, strings.Join(rec.Cards, ","), rec.Outcome)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func countMoves(records []domain.Record) int {
	n := 0
	for _, rec := range records {
		if rec.Kind != domain.RecordRoundResolved {
			n++
		}
	}
	return n
}

func stringClaim(claims jwt.MapClaims, name string) string {
	s, _ := claims[name].(string)
	return s
}

// intClaim reads a numeric claim; JSON numbers decode as float64.
func intClaim(claims jwt.MapClaims, name string) int {
	switch v := claims[name].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
