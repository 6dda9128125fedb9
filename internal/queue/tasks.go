package queue

import (
	"encoding/json"

	"github.com/procure-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmedEmail 订单确认成功通知任务
	TaskOrderConfirmedEmail = constants.TaskOrderConfirmedEmail
	// TaskAbuseTamperingReport 篡改提交上报任务
	TaskAbuseTamperingReport = constants.TaskAbuseTamperingReport
)

// OrderConfirmedEmailPayload 订单确认通知任务载荷
type OrderConfirmedEmailPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
	UserID  uint   `json:"user_id"`
}

// TamperingReportPayload 篡改上报任务载荷
type TamperingReportPayload struct {
	UserID    uint   `json:"user_id"`
	CompanyID uint   `json:"company_id"`
	ProductID uint   `json:"product_id,omitempty"`
	Detail    string `json:"detail"`
}

// NewOrderConfirmedEmailTask 创建订单确认通知任务
func NewOrderConfirmedEmailTask(payload OrderConfirmedEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmedEmail, body), nil
}

// NewTamperingReportTask 创建篡改上报任务
func NewTamperingReportTask(payload TamperingReportPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskAbuseTamperingReport, body), nil
}
