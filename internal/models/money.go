package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money 订单与活动金额的统一类型
// 任何入口（JSON、数据库、计算结果）都归一到 2 位小数四舍五入，
// 报价核验的分位比对依赖这一不变式
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 构造金额并归一精度
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MarshalJSON 金额序列化为固定 2 位小数的字符串，避免浮点表示歧义
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 接受字符串或数字形式的金额
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var text string
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
		amount, err := decimal.NewFromString(text)
		if err != nil {
			return err
		}
		m.Decimal = amount.Round(2)
		return nil
	}
	var number float64
	if err := json.Unmarshal(b, &number); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(number).Round(2)
	return nil
}

// Value 数据库写入值
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 数据库读取后归一精度
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回固定 2 位小数表示
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
