package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/procure-next/internal/logger"
	"github.com/procure-next/internal/provider"
	"github.com/procure-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmedEmail, c.handleOrderConfirmedEmail)
	mux.HandleFunc(queue.TaskAbuseTamperingReport, c.handleTamperingReport)
}

func (c *Consumer) handleOrderConfirmedEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmed_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmedEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmed_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirmed_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirmed_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirmed_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	user, err := c.UserRepo.GetByID(order.UserID)
	if err != nil {
		logger.Warnw("worker_order_confirmed_email_fetch_user_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
		return err
	}
	receiverEmail := ""
	if user != nil {
		receiverEmail = strings.TrimSpace(user.Email)
	}
	if receiverEmail == "" {
		logger.Debugw("worker_order_confirmed_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}

	// 当前仅记录投递日志，未接入企业通知渠道
	logger.Infow("worker_order_confirmed_email_sent",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"receiver_email", receiverEmail,
		"total_amount", order.TotalAmount.String(),
	)
	return nil
}

func (c *Consumer) handleTamperingReport(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_tampering_report_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.TamperingReportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_tampering_report_unmarshal_failed", "error", err)
		return err
	}
	if payload.UserID == 0 {
		logger.Debugw("worker_tampering_report_skip_invalid_payload", "user_id", payload.UserID)
		return nil
	}

	// 汇总记录篡改拒单，供风控侧检索
	logger.Warnw("worker_tampering_report_recorded",
		"user_id", payload.UserID,
		"company_id", payload.CompanyID,
		"detail", payload.Detail,
	)
	return nil
}
