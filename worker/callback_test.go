package worker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"payment-epayco/dto/model"
	"payment-epayco/helper"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doneTransaction(url string) model.PaymentTransaction {
	return model.PaymentTransaction{
		ID:                "tx-1",
		Reference:         "ORD-1",
		Amount:            decimal.NewFromInt(100),
		Currency:          "COP",
		State:             model.StateDone,
		AcquirerReference: "ref-payco-1",
		NotificationURL:   url,
	}
}

func TestSendCallback_SignsBody(t *testing.T) {
	received := make(chan CallbackData, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.True(t, helper.VerifyBodySign(body, "notify-secret", r.Header.Get("bodysign")))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var data CallbackData
		assert.NoError(t, json.Unmarshal(body, &data))
		received <- data
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := NewCallbackWorker("notify-secret", nil)
	err := w.SendCallback(context.Background(), CallbackJob{
		MerchantURL: server.URL,
		Data:        CallbackData{Reference: "ORD-1", State: "done"},
	})

	require.NoError(t, err)
	data := <-received
	assert.Equal(t, "ORD-1", data.Reference)
	assert.Equal(t, "done", data.State)
}

func TestSendCallbackWithRetry(t *testing.T) {
	t.Run("Recovers after failures", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		w := NewCallbackWorker("s", nil, WithRetries(3, time.Millisecond))
		err := w.SendCallbackWithRetry(context.Background(), CallbackJob{MerchantURL: server.URL})

		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("Gives up", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		w := NewCallbackWorker("s", nil, WithRetries(2, time.Millisecond))
		err := w.SendCallbackWithRetry(context.Background(), CallbackJob{MerchantURL: server.URL, Data: CallbackData{Reference: "ORD-1"}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ORD-1")
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("Stops on cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		w := NewCallbackWorker("s", nil, WithRetries(5, time.Hour))
		err := w.SendCallbackWithRetry(ctx, CallbackJob{MerchantURL: server.URL})

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNotify_DeliversThroughQueue(t *testing.T) {
	received := make(chan CallbackData, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var data CallbackData
		_ = json.NewDecoder(r.Body).Decode(&data)
		received <- data
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := NewCallbackWorker("s", nil, WithRetries(1, time.Millisecond))
	go w.ProcessCallbackQueue(context.Background())

	w.Notify(doneTransaction(server.URL))

	select {
	case data := <-received:
		assert.Equal(t, "ORD-1", data.Reference)
		assert.Equal(t, "done", data.State)
		assert.Equal(t, "100", data.Amount)
		assert.Equal(t, "ref-payco-1", data.AcquirerReference)
		assert.Equal(t, "Your payment has been processed", data.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("notification not delivered")
	}
	w.Stop()
}

func TestStop_WaitsForInFlightDelivery(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var delivered int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release
		atomic.AddInt32(&delivered, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	w := NewCallbackWorker("s", nil, WithRetries(1, time.Millisecond))
	go w.ProcessCallbackQueue(context.Background())
	w.Notify(doneTransaction(server.URL))

	select {
	case <-arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("notification not sent")
	}

	stopped := make(chan struct{})
	go func() {
		w.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a delivery was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&delivered))
}

func TestProcessCallbackQueue_ReturnsWhenStopped(t *testing.T) {
	w := NewCallbackWorker("s", nil)
	w.Stop()

	done := make(chan struct{})
	go func() {
		w.ProcessCallbackQueue(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer loop kept running after Stop")
	}
}

func TestNotify_SkipsAndDrops(t *testing.T) {
	w := NewCallbackWorker("s", nil, WithQueueSize(1))

	w.Notify(doneTransaction(""))
	assert.Len(t, w.queue, 0)

	w.Notify(doneTransaction("http://merchant.example.com/hook"))
	w.Notify(doneTransaction("http://merchant.example.com/hook"))
	assert.Len(t, w.queue, 1)

	w.Stop()
	assert.NotPanics(t, func() { w.Notify(doneTransaction("http://merchant.example.com/hook")) })
}
