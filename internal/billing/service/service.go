package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrValidation 校验失败。校验在任何持久化写入之前完成，
// 失败时不会触碰存储。
var ErrValidation = errors.New("validation failed")

// outstandingEpsilon 未清判定阈值：净额减累计已收大于 0.01 才算未清，
// 用于吸收浮点噪声。阈值本身是既定口径，不得改为 0。
var outstandingEpsilon = decimal.New(1, -2)

const dateLayout = "2006-01-02"

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q", ErrValidation, field, value)
	}
	return t, nil
}
