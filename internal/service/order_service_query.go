package service

import (
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
	"github.com/procure-next/internal/repository"

	"gorm.io/gorm"
)

// ListOrders 查询客户自己的订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter, customer *models.User) ([]models.Order, int64, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, 0, ErrNotCustomer
	}
	filter.UserID = customer.ID
	return s.orderRepo.ListByUser(filter)
}

// GetOrder 查询客户自己的订单详情
func (s *OrderService) GetOrder(orderID uint, customer *models.User) (*models.Order, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, ErrNotCustomer
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, customer.ID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// CancelOrder 客户取消待处理订单，并写入状态流转记录
func (s *OrderService) CancelOrder(orderID uint, customer *models.User) (*models.Order, error) {
	if customer == nil || customer.UserType != constants.UserTypeCustomer {
		return nil, ErrNotCustomer
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, customer.ID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrOrderCancelNotAllowed
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.UpdateStatus(order.ID, constants.OrderStatusCanceled, map[string]interface{}{
			"canceled_at": now,
		}); err != nil {
			return err
		}
		return orderRepo.CreateStatusLog(&models.OrderStatusLog{
			OrderID:    order.ID,
			FromStatus: constants.OrderStatusPending,
			ToStatus:   constants.OrderStatusCanceled,
			Note:       "canceled by customer",
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = constants.OrderStatusCanceled
	order.CanceledAt = &now
	return order, nil
}
