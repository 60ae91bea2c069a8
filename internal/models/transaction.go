package models

import (
	"github.com/uptrace/bun"

	"carnival-tracker/internal/money"
)

// Transaction is a single point-of-sale entry recorded by a desk. Rows are
// never updated after insert; admins may delete them.
type Transaction struct {
	bun.BaseModel `bun:"table:transactions"`

	ID            int64        `bun:"id,pk,autoincrement" json:"id"`
	TransactionID string       `bun:"transaction_id,unique,notnull" json:"transaction_id"`
	Amount        money.Amount `bun:"amount" json:"amount"`
	Desk          string       `bun:"desk" json:"desk"`
	Tokens50      int64        `bun:"tokens_50,default:0" json:"tokens_50"`
	Tokens100     int64        `bun:"tokens_100,default:0" json:"tokens_100"`
	TokensHaunted int64        `bun:"tokens_haunted,default:0" json:"tokens_haunted"`
}
