package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shorturl-go/internal/model"
)

func TestLedger(t *testing.T) {
	ledger := NewLedger()
	ledger.Initialize("abc")
	assert.Equal(t, 0, ledger.Count("abc"))
	assert.Empty(t, ledger.List("abc"))

	first := model.ClickEvent{Timestamp: time.Unix(1, 0), Referrer: "https://ref.example.com"}
	second := model.ClickEvent{Timestamp: time.Unix(2, 0)}
	assert.True(t, ledger.Append("abc", first))
	assert.True(t, ledger.Append("abc", second))

	// 重复初始化不能清空已有记录
	ledger.Initialize("abc")

	assert.Equal(t, 2, ledger.Count("abc"))
	assert.Equal(t, []model.ClickEvent{first, second}, ledger.List("abc"))
	assert.False(t, ledger.Append("missing", first))
	assert.Equal(t, 0, ledger.Count("missing"))
}
