package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/procure-next/internal/http/response"
	"github.com/procure-next/internal/service"

	"github.com/gin-gonic/gin"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var envelope response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope failed: %v body=%s", err, w.Body.String())
	}
	return envelope
}

func newErrorTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, w
}

func TestOrderPreviewErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrNotCustomer, response.CodeForbidden},
		{service.ErrCompanyNotFound, response.CodeNotFound},
		{service.ErrCompanyInactive, response.CodeUnprocessable},
		{service.ErrProductNotFound, response.CodeNotFound},
		{service.ErrProductNotSellable, response.CodeUnprocessable},
		{service.ErrProductCompanyMismatch, response.CodeForbidden},
		{service.ErrInvalidOrderItem, response.CodeUnprocessable},
		{service.ErrDuplicateProduct, response.CodeUnprocessable},
		{service.ErrPreviewTokenExhausted, response.CodeInternal},
	}
	for _, tc := range cases {
		c, w := newErrorTestContext(t)
		respondOrderPreviewError(c, tc.err)
		envelope := decodeEnvelope(t, w)
		if envelope.StatusCode != tc.code {
			t.Fatalf("%v: status_code want %d got %d", tc.err, tc.code, envelope.StatusCode)
		}
	}
}

func TestOrderPreviewErrorCodesMatchWrapped(t *testing.T) {
	// 服务层通常以 %w 包装哨兵错误补充上下文
	c, w := newErrorTestContext(t)
	respondOrderPreviewError(c, fmt.Errorf("%w: product 42", service.ErrProductNotFound))
	envelope := decodeEnvelope(t, w)
	if envelope.StatusCode != response.CodeNotFound {
		t.Fatalf("wrapped sentinel want %d got %d", response.CodeNotFound, envelope.StatusCode)
	}
}

func TestOrderConfirmErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrPreviewNotFound, response.CodeNotFound},
		{service.ErrPreviewOwnership, response.CodeForbidden},
		{service.ErrNotCustomer, response.CodeForbidden},
	}
	for _, tc := range cases {
		c, w := newErrorTestContext(t)
		respondOrderConfirmError(c, tc.err)
		envelope := decodeEnvelope(t, w)
		if envelope.StatusCode != tc.code {
			t.Fatalf("%v: status_code want %d got %d", tc.err, tc.code, envelope.StatusCode)
		}
	}
}

func TestOrderConfirmInvalidatedEnvelope(t *testing.T) {
	c, w := newErrorTestContext(t)
	respondOrderConfirmError(c, &service.PreviewInvalidatedError{
		Changes: []service.PreviewChange{{Type: "price_changed", ProductID: 7}},
	})

	envelope := decodeEnvelope(t, w)
	if envelope.StatusCode != response.CodeConflict {
		t.Fatalf("status_code want %d got %d", response.CodeConflict, envelope.StatusCode)
	}
	data, ok := envelope.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data should carry diff payload, got %T", envelope.Data)
	}
	if data["error_code"] != "PREVIEW_INVALIDATED" {
		t.Fatalf("error_code want PREVIEW_INVALIDATED got %v", data["error_code"])
	}
	details, ok := data["details"].([]interface{})
	if !ok || len(details) != 1 {
		t.Fatalf("details should carry one change, got %v", data["details"])
	}
}

func TestOrderCreateErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{service.ErrPriceStale, response.CodeUnprocessable},
		{service.ErrOfferExpired, response.CodeUnprocessable},
		{service.ErrCalculationMismatch, response.CodeUnprocessable},
		{service.ErrBonusIndexInvalid, response.CodeUnprocessable},
		{service.ErrProductCompanyMismatch, response.CodeForbidden},
		{service.ErrProductNotFound, response.CodeNotFound},
	}
	for _, tc := range cases {
		c, w := newErrorTestContext(t)
		respondOrderCreateError(c, tc.err)
		envelope := decodeEnvelope(t, w)
		if envelope.StatusCode != tc.code {
			t.Fatalf("%v: status_code want %d got %d", tc.err, tc.code, envelope.StatusCode)
		}
	}
}
