package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionAddedMessage announces a committed transaction. Amount carries
// its sign: negative for outcomes, positive for incomes.
type TransactionAddedMessage struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	CategoryID    string          `json:"category_id"`
	Amount        decimal.Decimal `json:"amount"`
	TimeStamp     time.Time       `json:"timestamp"`
}

var ErrIncompleteMessage = errors.New("message is missing identifiers")

func (m *TransactionAddedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionAddedMessageFromJSON decodes a message and rejects one that
// lacks any of its identifiers.
func TransactionAddedMessageFromJSON(data []byte) (*TransactionAddedMessage, error) {
	var msg TransactionAddedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.TransactionID == "" || msg.AccountID == "" || msg.CategoryID == "" {
		return nil, ErrIncompleteMessage
	}
	return &msg, nil
}
